package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-catalog/pkg/app"
	"gitlab.connectwisedev.com/product-catalog/pkg/catalog"
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
	notifier, err := rt.Notifier()
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}

	proc := catalog.NewBatchProcessor(svc, notifier)

	// Every delivery is acknowledged; per-record failures are logged only.
	lambda.Start(func(ctx context.Context, event events.SQSEvent) error {
		proc.Process(ctx, event)
		return nil
	})
}
