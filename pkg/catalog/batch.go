package catalog

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
	"gitlab.connectwisedev.com/product-catalog/pkg/notify"
)

// importMessage mirrors a queued ImportRecord. Pointers tell an absent or
// null field apart from a zero value; a JSON type mismatch fails decoding.
type importMessage struct {
	Title       *string  `json:"title" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Count       *float64 `json:"count" validate:"required"`
	Action      *string  `json:"action" validate:"required"`
}

// Decoded is the outcome of decoding one queue message: either Valid with
// a Record, or not valid with a Reason.
type Decoded struct {
	Record models.ImportRecord
	Valid  bool
	Reason string
}

var messageValidator = validator.New()

// DecodeImportRecord checks a message body against the ImportRecord shape:
// string title, description and action, numeric price and count.
func DecodeImportRecord(body string) Decoded {
	var msg importMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return Decoded{Reason: err.Error()}
	}
	if err := messageValidator.Struct(msg); err != nil {
		return Decoded{Reason: err.Error()}
	}
	return Decoded{
		Valid: true,
		Record: models.ImportRecord{
			Title:       *msg.Title,
			Description: *msg.Description,
			Price:       *msg.Price,
			Count:       *msg.Count,
			Action:      *msg.Action,
		},
	}
}

// BatchResult counts per-record outcomes of one delivery.
type BatchResult struct {
	Received int
	Created  int
	Skipped  int
	Failed   int
}

// BatchProcessor turns queued import records into products with stock.
type BatchProcessor struct {
	svc      *Service
	notifier notify.Notifier
}

// NewBatchProcessor creates a processor writing through svc and announcing
// each processed delivery on notifier.
func NewBatchProcessor(svc *Service, notifier notify.Notifier) *BatchProcessor {
	return &BatchProcessor{svc: svc, notifier: notifier}
}

// Process handles every message of one delivery. Invalid messages are
// skipped and failed writes abandon only their own record; neither stops
// the rest of the batch. Exactly one notification is attempted afterwards,
// whatever the per-record outcomes were, and its failure is only logged.
func (b *BatchProcessor) Process(ctx context.Context, event events.SQSEvent) BatchResult {
	result := BatchResult{Received: len(event.Records)}

	for _, msg := range event.Records {
		decoded := DecodeImportRecord(msg.Body)
		if !decoded.Valid {
			logger.Error("invalid product format", "message_id", msg.MessageId, "reason", decoded.Reason, "body", msg.Body)
			result.Skipped++
			continue
		}
		if b.processRecord(ctx, msg.MessageId, decoded.Record) {
			result.Created++
		} else {
			result.Failed++
		}
	}

	if err := b.notifier.Notify(ctx, notify.Message{Message: notify.ProductsCreatedMessage}); err != nil {
		logger.Error("failed to publish catalog notification", "error", err)
	}

	logger.Info("batch processed",
		"received", result.Received, "created", result.Created,
		"skipped", result.Skipped, "failed", result.Failed)
	return result
}

func (b *BatchProcessor) processRecord(ctx context.Context, messageID string, rec models.ImportRecord) bool {
	logger.Debug("processing record", "message_id", messageID, "record", rec)

	p, err := b.svc.insert(ctx, models.NewProduct{
		Title:       rec.Title,
		Description: rec.Description,
		Price:       rec.Price,
	})
	if err != nil {
		logger.Error("error creating product", "message_id", messageID, "record", rec, "error", err)
		return false
	}
	logger.Info("product created", "product_id", p.ID, "title", p.Title)

	count := int(rec.Count)
	if err := b.svc.stock.Put(ctx, models.Stock{ProductID: p.ID, Count: count}); err != nil {
		// The product row stays; there is no compensating delete.
		logger.Error("error creating stock", "product_id", p.ID, "record", rec, "error", err)
		return false
	}
	logger.Info("stock created", "product_id", p.ID, "count", count)

	b.svc.remember(ctx, p.WithCount(count))
	return true
}
