package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/chunk"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

// MaxBatchSize is the SQS limit on entries per SendMessageBatch call.
const MaxBatchSize = 10

// QueueAPI is the subset of *sqs.Client used by the Dispatcher.
type QueueAPI interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

var _ QueueAPI = (*sqs.Client)(nil)

// Dispatcher sends import records to the catalog items queue.
type Dispatcher struct {
	client   QueueAPI
	queueURL string
}

// NewDispatcher creates a dispatcher for queueURL.
func NewDispatcher(client QueueAPI, queueURL string) *Dispatcher {
	return &Dispatcher{client: client, queueURL: queueURL}
}

// Dispatch sends records in order, MaxBatchSize per call, one message per
// record. Entry ids restart at "0" in every call; they only correlate
// entries within that call.
//
// Sending stops at the first failed call and its error is returned. Calls
// already made are not undone. The returned count is the number of calls
// that succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, records []models.ImportRecord) (int, error) {
	sent := 0
	for n, group := range chunk.Slice(records, MaxBatchSize) {
		entries := make([]sqstypes.SendMessageBatchRequestEntry, 0, len(group))
		for i, rec := range group {
			body, err := json.Marshal(rec)
			if err != nil {
				return sent, fmt.Errorf("encoding record %d of batch %d: %w", i, n, err)
			}
			entries = append(entries, sqstypes.SendMessageBatchRequestEntry{
				Id:          aws.String(strconv.Itoa(i)),
				MessageBody: aws.String(string(body)),
			})
		}

		out, err := d.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(d.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return sent, fmt.Errorf("sending batch %d: %w", n, err)
		}
		if len(out.Failed) > 0 {
			first := out.Failed[0]
			return sent, fmt.Errorf("sending batch %d: %d of %d entries failed, entry %s: %s",
				n, len(out.Failed), len(entries), aws.ToString(first.Id), aws.ToString(first.Message))
		}

		sent++
		logger.Debug("batch sent", "batch", n, "entries", len(entries))
	}
	return sent, nil
}
