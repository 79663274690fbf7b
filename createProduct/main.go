package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-catalog/pkg/api"
	"gitlab.connectwisedev.com/product-catalog/pkg/app"
)

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

	h := api.NewHandlers(svc, nil, rt.Config.ListPageSize)
	lambda.Start(h.CreateProduct)
}
