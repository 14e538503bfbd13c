package changelog

import "time"

// Event describes one committed mutation of the product catalogue.
type Event struct {
	Seq        uint64    `json:"seq"`
	Op         string    `json:"op"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
