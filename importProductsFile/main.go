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

	uploads, err := rt.Uploads()
	if err != nil {
		log.Fatalf("Failed to initialize upload signer: %v", err)
	}

	h := api.NewHandlers(nil, uploads, rt.Config.ListPageSize)
	lambda.Start(h.ImportProductsFile)
}
