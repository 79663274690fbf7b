// Package app builds the dependencies of each function from configuration.
// Every entrypoint constructs its own Runtime at startup; nothing here is
// a package-level singleton.
package app

import (
	"context"
	"fmt"

	"gitlab.connectwisedev.com/product-catalog/pkg/awsclient"
	"gitlab.connectwisedev.com/product-catalog/pkg/cache"
	"gitlab.connectwisedev.com/product-catalog/pkg/catalog"
	"gitlab.connectwisedev.com/product-catalog/pkg/config"
	"gitlab.connectwisedev.com/product-catalog/pkg/database"
	"gitlab.connectwisedev.com/product-catalog/pkg/importer"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
	"gitlab.connectwisedev.com/product-catalog/pkg/notify"
	"gitlab.connectwisedev.com/product-catalog/pkg/store"
)

// Runtime holds the configuration and the open connections of one process.
type Runtime struct {
	Config *config.Config
	AWS    *awsclient.Clients

	db    *database.DBClient
	cache *cache.ProductCache
}

// New loads configuration, sets the log level and prepares AWS clients.
func New(ctx context.Context) (*Runtime, error) {
	cfg, err := config.MustLoad()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	clients, err := awsclient.New(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		return nil, err
	}
	return &Runtime{Config: cfg, AWS: clients}, nil
}

// Close releases database and cache connections.
func (r *Runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
	r.cache.Close()
}

// Stores returns the product and stock stores for the configured driver.
func (r *Runtime) Stores(ctx context.Context) (store.ProductStore, store.StockStore, error) {
	switch r.Config.StoreDriver {
	case "postgres":
		if r.db == nil {
			db, err := database.NewPostgresClient(ctx, r.Config.PostgresDSN())
			if err != nil {
				return nil, nil, err
			}
			if err := db.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
			r.db = db
		}
		return store.NewPostgresProductStore(r.db.GetDB()), store.NewPostgresStockStore(r.db.GetDB()), nil
	default:
		client := r.AWS.DynamoDB()
		return store.NewDynamoProductStore(client, r.Config.ProductTableName),
			store.NewDynamoStockStore(client, r.Config.StockTableName), nil
	}
}

// Cache connects to Redis when REDIS_ADDR is set. An unreachable Redis is
// logged and the function runs uncached; a nil cache is a valid no-op.
func (r *Runtime) Cache(ctx context.Context) *cache.ProductCache {
	if r.cache != nil || r.Config.RedisAddr == "" {
		return r.cache
	}
	client, err := cache.NewRedisClient(ctx, r.Config.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", r.Config.RedisAddr, "error", err)
		return nil
	}
	r.cache = cache.NewProductCache(client, r.Config.CacheTTL)
	return r.cache
}

// Catalog builds the catalog service over the configured stores and cache.
func (r *Runtime) Catalog(ctx context.Context) (*catalog.Service, error) {
	products, stock, err := r.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening stores: %w", err)
	}
	return catalog.NewService(products, stock, r.Cache(ctx)), nil
}

// Notifier returns the configured catalog notification publisher.
func (r *Runtime) Notifier() (notify.Notifier, error) {
	if err := r.Config.RequireNotifier(); err != nil {
		return nil, err
	}
	if r.Config.NotifyDriver == "ses" {
		return notify.NewEmailNotifier(r.AWS.SES(), r.Config.NotifyEmailFrom, r.Config.NotifyEmailTo), nil
	}
	return notify.NewSNSNotifier(r.AWS.SNS(), r.Config.CreateProductTopicARN), nil
}

// Uploads returns the signer for staging upload URLs.
func (r *Runtime) Uploads() (*importer.UploadAuthorizer, error) {
	if err := r.Config.RequireBucket(); err != nil {
		return nil, err
	}
	return importer.NewUploadAuthorizer(r.AWS.S3Presigner(), r.Config.BucketName, r.Config.StagingPrefix, r.Config.UploadURLTTL), nil
}

// Pipeline returns the staged-file import pipeline. Without a queue URL
// records are parsed but not dispatched.
func (r *Runtime) Pipeline() *importer.Pipeline {
	var dispatcher *importer.Dispatcher
	if r.Config.CatalogItemsQueueURL != "" {
		dispatcher = importer.NewDispatcher(r.AWS.SQS(), r.Config.CatalogItemsQueueURL)
	} else {
		logger.Warn("CATALOG_ITEMS_QUEUE_URL not set, imports will not be dispatched")
	}
	return importer.NewPipeline(r.AWS.S3(), dispatcher, r.Config.StagingPrefix, r.Config.ProcessedPrefix)
}
