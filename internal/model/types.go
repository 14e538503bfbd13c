// Package model defines domain types used by the service.
package model

import "time"

// Rating bounds accepted for a product rating.
const (
	RatingMin = 1
	RatingMax = 5
)

// Payload carries the caller-supplied fields for creating or updating a product.
type Payload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Product represents a catalogue entry and its accumulated ratings.
//
// The registry owns both timestamps; GORM's automatic tracking is disabled so
// created_at survives updates and updated_at stays unset until the first one.
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Name        string     `json:"name" gorm:"size:255;not null"`
	Description string     `json:"description" gorm:"type:text"`
	URL         string     `json:"url" gorm:"size:255"`
	Ratings     []int      `json:"ratings" gorm:"serializer:json"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"`
}
