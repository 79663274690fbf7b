package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/product-catalog/pkg/awsclient"
	"gitlab.connectwisedev.com/product-catalog/pkg/config"
	"gitlab.connectwisedev.com/product-catalog/pkg/notify"
	"gitlab.connectwisedev.com/product-catalog/pkg/store"
)

func testRuntime(t *testing.T, cfg config.Config) *Runtime {
	t.Helper()
	clients, err := awsclient.New(context.Background(), "us-east-1", "http://localhost:4566")
	require.NoError(t, err)
	return &Runtime{Config: &cfg, AWS: clients}
}

func TestNotifierDrivers(t *testing.T) {
	rt := testRuntime(t, config.Config{NotifyDriver: "sns", CreateProductTopicARN: "arn:aws:sns:us-east-1:000000000000:createProductTopic"})
	n, err := rt.Notifier()
	require.NoError(t, err)
	assert.IsType(t, &notify.SNSNotifier{}, n)

	rt = testRuntime(t, config.Config{NotifyDriver: "ses", NotifyEmailFrom: "a@example.com", NotifyEmailTo: "b@example.com"})
	n, err = rt.Notifier()
	require.NoError(t, err)
	assert.IsType(t, &notify.EmailNotifier{}, n)

	rt = testRuntime(t, config.Config{NotifyDriver: "sns"})
	_, err = rt.Notifier()
	assert.Error(t, err)
}

func TestStoresDynamoDB(t *testing.T) {
	rt := testRuntime(t, config.Config{StoreDriver: "dynamodb", ProductTableName: "ProductsTable", StockTableName: "StockTable"})

	products, stock, err := rt.Stores(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &store.DynamoProductStore{}, products)
	assert.IsType(t, &store.DynamoStockStore{}, stock)
}

func TestCache(t *testing.T) {
	rt := testRuntime(t, config.Config{})
	assert.Nil(t, rt.Cache(context.Background()))

	mr := miniredis.RunT(t)
	rt = testRuntime(t, config.Config{RedisAddr: mr.Addr(), CacheTTL: time.Minute})
	c := rt.Cache(context.Background())
	require.NotNil(t, c)
	assert.Same(t, c, rt.Cache(context.Background()))
	rt.Close()
}

func TestUploadsRequireBucket(t *testing.T) {
	_, err := testRuntime(t, config.Config{}).Uploads()
	assert.Error(t, err)

	u, err := testRuntime(t, config.Config{BucketName: "import-bucket", StagingPrefix: "staging/", UploadURLTTL: time.Minute}).Uploads()
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestPipelineWithoutQueue(t *testing.T) {
	rt := testRuntime(t, config.Config{StagingPrefix: "staging/", ProcessedPrefix: "processed/"})
	assert.NotNil(t, rt.Pipeline())
}
