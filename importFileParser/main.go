package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-catalog/pkg/app"
	"gitlab.connectwisedev.com/product-catalog/pkg/importer"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

// S3EventWrapper is a custom struct to handle either S3 events or direct CSV payload
type S3EventWrapper struct {
	Records []events.S3EventRecord `json:"Records,omitempty"`
	CSVData string                 `json:"csv_data,omitempty"` // For local testing
}

type fileParser struct {
	pipeline *importer.Pipeline
}

// handle returns nil for files that failed; the pipeline logs them.
func (f *fileParser) handle(ctx context.Context, event S3EventWrapper) error {
	switch {
	case len(event.Records) > 0:
		results := f.pipeline.HandleEvent(ctx, events.S3Event{Records: event.Records})
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		logger.Info("import event handled", "files", len(results), "failed", failed)
	case event.CSVData != "":
		logger.Info("processing direct CSV data payload")
		res, err := f.pipeline.ImportCSV(ctx, strings.NewReader(event.CSVData))
		if err != nil {
			logger.Error("inline import failed", "records", res.Records, "error", err)
			return nil
		}
		logger.Info("inline import done", "records", res.Records, "batches", res.Batches)
	default:
		return errors.New("no S3 event record or direct CSV data found in the payload")
	}
	return nil
}

func main() {
	rt, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := rt.Config.RequireBucket(); err != nil {
		log.Fatalf("Failed to initialize import pipeline: %v", err)
	}

	f := &fileParser{pipeline: rt.Pipeline()}
	lambda.Start(f.handle)
}
