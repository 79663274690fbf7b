package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-catalog/pkg/app"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

const defaultSeedCount = 20

// SeedRequest is the optional invoke payload.
type SeedRequest struct {
	Count int `json:"count"`
}

// SeedResponse reports what was written.
type SeedResponse struct {
	Seeded int      `json:"seeded"`
	IDs    []string `json:"ids"`
}

func main() {
	ctx := context.Background()

	rt, err := app.New(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer rt.Close()

	svc, err := rt.Catalog(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}

	lambda.Start(func(ctx context.Context, req SeedRequest) (SeedResponse, error) {
		n := req.Count
		if n <= 0 {
			n = defaultSeedCount
		}
		if n > 1000 {
			return SeedResponse{}, fmt.Errorf("count %d exceeds 1000", n)
		}

		products, err := svc.Seed(ctx, n)
		if err != nil {
			logger.Error("seeding failed", "count", n, "error", err)
			return SeedResponse{}, err
		}

		resp := SeedResponse{Seeded: len(products), IDs: make([]string, len(products))}
		for i, p := range products {
			resp.IDs[i] = p.ID
		}
		logger.Info("products seeded", "count", resp.Seeded)
		return resp, nil
	})
}
