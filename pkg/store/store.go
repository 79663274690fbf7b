// Package store persists products and stock counts.
//
// Two drivers exist: DynamoDB (the default, one table per entity) and
// PostgreSQL. Both satisfy ProductStore and StockStore, so the catalog
// service and the batch processor never see which one is in use.
package store

import (
	"context"
	"errors"

	"gitlab.connectwisedev.com/product-catalog/models"
)

// ErrNotFound is returned by Get when no item exists for the key.
var ErrNotFound = errors.New("not found")

// Page is one bounded slice of a product table scan. LastEvaluatedKey is
// empty when the scan is exhausted; otherwise it is passed back as the
// start key of the next call.
//
// Pages are not a snapshot: items written or deleted between two calls
// may be skipped or returned twice.
type Page struct {
	Items            []models.Product
	LastEvaluatedKey string
}

// ProductStore is the products table.
type ProductStore interface {
	Put(ctx context.Context, p models.Product) error
	Get(ctx context.Context, id string) (models.Product, error)
	Scan(ctx context.Context, limit int32, startKey string) (Page, error)
	PutBatch(ctx context.Context, products []models.Product) error
}

// StockStore is the stock table, keyed by product id.
type StockStore interface {
	Put(ctx context.Context, s models.Stock) error
	Get(ctx context.Context, productID string) (models.Stock, error)
	SetCount(ctx context.Context, productID string, count int) (models.Stock, error)
	AdjustCount(ctx context.Context, productID string, delta int) (models.Stock, error)
}
