package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/product-catalog/models"
)

func numberedRecords(n int) []models.ImportRecord {
	records := make([]models.ImportRecord, n)
	for i := range records {
		records[i] = models.ImportRecord{Title: fmt.Sprintf("item-%02d", i), Description: "d", Price: float64(i), Count: 1, Action: "create"}
	}
	return records
}

func TestDispatchBatchCounts(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 20, 25} {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			queue := &fakeQueue{}
			d := NewDispatcher(queue, "https://sqs.local/queue/catalogItemsQueue")

			batches, err := d.Dispatch(context.Background(), numberedRecords(n))
			require.NoError(t, err)

			want := (n + MaxBatchSize - 1) / MaxBatchSize
			assert.Equal(t, want, batches)
			assert.Len(t, queue.inputs, want)
		})
	}
}

func TestDispatchPreservesOrder(t *testing.T) {
	queue := &fakeQueue{}
	d := NewDispatcher(queue, "queue-url")
	records := numberedRecords(23)

	_, err := d.Dispatch(context.Background(), records)
	require.NoError(t, err)

	bodies := queue.bodies()
	require.Len(t, bodies, len(records))
	for i, body := range bodies {
		var msg struct {
			Title string `json:"title"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &msg))
		assert.Equal(t, records[i].Title, msg.Title)
	}
	for _, in := range queue.inputs {
		assert.Equal(t, "queue-url", aws.ToString(in.QueueUrl))
		assert.LessOrEqual(t, len(in.Entries), MaxBatchSize)
	}
}

func TestDispatchIDsRestartPerBatch(t *testing.T) {
	queue := &fakeQueue{}
	d := NewDispatcher(queue, "queue-url")

	_, err := d.Dispatch(context.Background(), numberedRecords(12))
	require.NoError(t, err)

	require.Len(t, queue.inputs, 2)
	assert.Equal(t, "0", aws.ToString(queue.inputs[0].Entries[0].Id))
	assert.Equal(t, "9", aws.ToString(queue.inputs[0].Entries[9].Id))
	assert.Equal(t, "0", aws.ToString(queue.inputs[1].Entries[0].Id))
	assert.Equal(t, "1", aws.ToString(queue.inputs[1].Entries[1].Id))
}

func TestDispatchStopsAtFirstFailure(t *testing.T) {
	queue := &fakeQueue{err: errBoom, failAt: 2}
	d := NewDispatcher(queue, "queue-url")

	batches, err := d.Dispatch(context.Background(), numberedRecords(35))

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, batches)
	assert.Len(t, queue.inputs, 2, "no call after the failing one")
}

func TestDispatchReportedEntryFailure(t *testing.T) {
	queue := &fakeQueue{failIDs: []string{"3"}}
	d := NewDispatcher(queue, "queue-url")

	batches, err := d.Dispatch(context.Background(), numberedRecords(15))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 3")
	assert.Equal(t, 0, batches)
	assert.Len(t, queue.inputs, 1)
}

func TestDispatchNaNAsNull(t *testing.T) {
	queue := &fakeQueue{}
	d := NewDispatcher(queue, "queue-url")

	_, err := d.Dispatch(context.Background(), []models.ImportRecord{{Title: "x", Price: math.NaN(), Count: math.NaN()}})
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"x","description":"","price":null,"count":null,"action":""}`, queue.bodies()[0])
}
