// Package seed loads a demonstration catalogue through the registry.
package seed

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
)

type entry struct {
	payload model.Payload
	ratings []int
}

var catalogue = []entry{
	{
		payload: model.Payload{
			Name:        "Walnut Desk",
			Description: "Solid walnut writing desk with two drawers",
			URL:         "https://img.example.com/products/walnut-desk.png",
		},
		ratings: []int{5, 4, 5},
	},
	{
		payload: model.Payload{
			Name:        "Oak Chair",
			Description: "Stackable oak dining chair",
			URL:         "https://img.example.com/products/oak-chair.png",
		},
		ratings: []int{4, 2},
	},
	{
		payload: model.Payload{
			Name:        "Pine Bookshelf",
			Description: "Five-shelf bookcase in untreated pine",
			URL:         "https://img.example.com/products/pine-bookshelf.png",
		},
		ratings: []int{3},
	},
	{
		payload: model.Payload{
			Name:        "Linen Sofa",
			Description: "Three-seat sofa with washable linen covers",
			URL:         "https://img.example.com/products/linen-sofa.png",
		},
	},
	{
		payload: model.Payload{
			Name:        "Bamboo Lamp",
			Description: "Floor lamp with a woven bamboo shade",
			URL:         "https://img.example.com/products/bamboo-lamp.png",
		},
		ratings: []int{5, 5, 4, 3},
	},
	{
		payload: model.Payload{
			Name:        "Steel Stool",
			Description: "Adjustable workshop stool, powder-coated steel",
			URL:         "https://img.example.com/products/steel-stool.png",
		},
	},
}

// Run inserts the demonstration catalogue with its ratings. Products whose
// names already exist are skipped, so running it twice is safe.
func Run(ctx context.Context, reg *registry.Registry) (added, skipped int, err error) {
	for _, e := range catalogue {
		p, err := reg.Add(ctx, e.payload)
		if registry.IsConflict(err) {
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, fmt.Errorf("seed: add %q: %w", e.payload.Name, err)
		}
		for _, v := range e.ratings {
			if _, err := reg.Rate(ctx, p.ID, v); err != nil {
				return added, skipped, fmt.Errorf("seed: rate %q: %w", e.payload.Name, err)
			}
		}
		added++
	}
	obs.Logger.Info("seed_complete", "added", added, "skipped", skipped)
	return added, skipped, nil
}
