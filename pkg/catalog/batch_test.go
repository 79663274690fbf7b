package catalog

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/notify"
)

const validBody = `{"title":"Test Product","description":"Test Description","price":100,"count":10,"action":"create"}`

func sqsEvent(bodies ...string) events.SQSEvent {
	var ev events.SQSEvent
	for i, b := range bodies {
		ev.Records = append(ev.Records, events.SQSMessage{MessageId: string(rune('a' + i)), Body: b})
	}
	return ev
}

func TestDecodeImportRecord(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", validBody, true},
		{"empty strings are strings", `{"title":"","description":"","price":0,"count":0,"action":""}`, true},
		{"price is a string", `{"title":"Invalid Product","description":"d","price":"invalid","count":1,"action":""}`, false},
		{"missing fields", `{"title":"Invalid Product","price":1}`, false},
		{"null numbers from NaN", `{"title":"value1","description":"","price":null,"count":null,"action":""}`, false},
		{"title is a number", `{"title":1,"description":"d","price":1,"count":1,"action":""}`, false},
		{"not json", `Title,Description`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecodeImportRecord(tt.body)
			assert.Equal(t, tt.valid, d.Valid)
			if !tt.valid {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDecodeImportRecordFields(t *testing.T) {
	d := DecodeImportRecord(validBody)
	require.True(t, d.Valid)
	assert.Equal(t, models.ImportRecord{Title: "Test Product", Description: "Test Description", Price: 100, Count: 10, Action: "create"}, d.Record)
}

func TestProcessCreatesProductAndStock(t *testing.T) {
	products := &memProducts{}
	stock := newMemStock()
	notifier := &recordingNotifier{}
	proc := NewBatchProcessor(newTestService(products, stock, nil), notifier)

	result := proc.Process(context.Background(), sqsEvent(validBody))

	assert.Equal(t, BatchResult{Received: 1, Created: 1}, result)
	require.Len(t, products.items, 1)
	assert.Equal(t, models.Product{ID: "generated-id", Title: "Test Product", Description: "Test Description", Price: 100, CreatedAt: 1700000000000}, products.items[0])
	assert.Equal(t, 10, stock.counts["generated-id"])
	assert.Equal(t, []notify.Message{{Message: "Products created successfully"}}, notifier.messages)
}

func TestProcessNotifiesOnceWithMixedRecords(t *testing.T) {
	products := &memProducts{}
	notifier := &recordingNotifier{}
	proc := NewBatchProcessor(newTestService(products, newMemStock(), nil), notifier)

	result := proc.Process(context.Background(), sqsEvent(`{"title":"Invalid Product","price":"invalid"}`, validBody))

	assert.Equal(t, BatchResult{Received: 2, Created: 1, Skipped: 1}, result)
	assert.Len(t, products.items, 1)
	assert.Len(t, notifier.messages, 1)
}

func TestProcessNotifiesWhenNothingSucceeds(t *testing.T) {
	products := &memProducts{}
	notifier := &recordingNotifier{}
	proc := NewBatchProcessor(newTestService(products, newMemStock(), nil), notifier)

	result := proc.Process(context.Background(), sqsEvent(`{"title":"Invalid Product","price":"invalid"}`))

	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, products.items)
	assert.Len(t, notifier.messages, 1)
}

func TestProcessContinuesAfterPersistenceFailure(t *testing.T) {
	products := &memProducts{putErr: errBoom}
	notifier := &recordingNotifier{}
	proc := NewBatchProcessor(newTestService(products, newMemStock(), nil), notifier)

	result := proc.Process(context.Background(), sqsEvent(validBody, validBody))

	assert.Equal(t, BatchResult{Received: 2, Failed: 2}, result)
	assert.Len(t, notifier.messages, 1)
}

func TestProcessStockFailureKeepsProduct(t *testing.T) {
	products := &memProducts{}
	stock := newMemStock()
	stock.putErr = errBoom
	proc := NewBatchProcessor(newTestService(products, stock, nil), &recordingNotifier{})

	result := proc.Process(context.Background(), sqsEvent(validBody))

	assert.Equal(t, 1, result.Failed)
	assert.Len(t, products.items, 1, "no compensating delete")
	assert.Empty(t, stock.counts)
}

func TestProcessSwallowsNotificationFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errBoom}
	proc := NewBatchProcessor(newTestService(&memProducts{}, newMemStock(), nil), notifier)

	result := proc.Process(context.Background(), sqsEvent(validBody))

	assert.Equal(t, 1, result.Created)
	assert.Len(t, notifier.messages, 1)
}

func TestProcessEmptyDeliveryStillNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	proc := NewBatchProcessor(newTestService(&memProducts{}, newMemStock(), nil), notifier)

	proc.Process(context.Background(), events.SQSEvent{})

	assert.Len(t, notifier.messages, 1)
}
