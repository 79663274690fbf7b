package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gitlab.connectwisedev.com/product-catalog/models"
)

var seedCategories = []string{"Electronics", "Books", "Toys"}

// Seed writes n generated products in batches and returns them.
func (s *Service) Seed(ctx context.Context, n int) ([]models.Product, error) {
	products := make([]models.Product, n)
	created := s.now().UnixMilli()
	for i := range products {
		products[i] = models.Product{
			ID:          fmt.Sprintf("prod-%d", i+1),
			Title:       fmt.Sprintf("Product %d", i+1),
			Description: seedCategories[(i+1)%len(seedCategories)],
			Price:       float64(rand.IntN(100) + 1),
			CreatedAt:   created,
		}
	}

	if err := s.products.PutBatch(ctx, products); err != nil {
		return nil, fmt.Errorf("seeding products: %w", err)
	}
	return products, nil
}
