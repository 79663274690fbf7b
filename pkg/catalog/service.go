// Package catalog implements the product catalog operations: listing,
// lookup, creation, stock updates and processing of imported records.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/cache"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
	"gitlab.connectwisedev.com/product-catalog/pkg/store"
)

var (
	// ErrNotFound is returned when no product exists for an id.
	ErrNotFound = store.ErrNotFound
	// ErrListProducts wraps any failure while building a product listing.
	ErrListProducts = errors.New("error getting products")
	// ErrInvalidInput wraps validation failures of caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// Service reads and writes the catalog through the product and stock
// stores, keeping the product cache warm along the way.
type Service struct {
	products store.ProductStore
	stock    store.StockStore
	cache    *cache.ProductCache
	validate *validator.Validate

	now   func() time.Time
	newID func() string
}

// NewService wires a Service. c may be nil to run without a cache.
func NewService(products store.ProductStore, stock store.StockStore, c *cache.ProductCache) *Service {
	return &Service{
		products: products,
		stock:    stock,
		cache:    c,
		validate: validator.New(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// ListResult is one page of enriched products.
type ListResult struct {
	Items            []models.PublicProduct
	LastEvaluatedKey string
}

// List returns up to limit products after startKey, each with its stock
// count (0 when no stock row exists), in the order the store returned them.
func (s *Service) List(ctx context.Context, limit int32, startKey string) (ListResult, error) {
	page, err := s.products.Scan(ctx, limit, startKey)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: %v", ErrListProducts, err)
	}

	result := ListResult{
		Items:            make([]models.PublicProduct, 0, len(page.Items)),
		LastEvaluatedKey: page.LastEvaluatedKey,
	}
	for _, p := range page.Items {
		count, err := s.stockCount(ctx, p.ID)
		if err != nil {
			return ListResult{}, fmt.Errorf("%w: %v", ErrListProducts, err)
		}
		result.Items = append(result.Items, p.WithCount(count))
	}

	if err := s.cache.SetMany(ctx, result.Items); err != nil {
		logger.Warn("failed to populate cache after listing", "error", err)
	}
	return result, nil
}

// Get returns one enriched product. A missing product yields ErrNotFound
// before any stock lookup happens.
func (s *Service) Get(ctx context.Context, id string) (models.PublicProduct, error) {
	if cached, ok, err := s.cache.Get(ctx, id); err != nil {
		logger.Warn("cache read failed, falling back to store", "product_id", id, "error", err)
	} else if ok {
		return cached, nil
	}

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return models.PublicProduct{}, err
	}
	count, err := s.stockCount(ctx, id)
	if err != nil {
		return models.PublicProduct{}, err
	}

	out := p.WithCount(count)
	s.remember(ctx, out)
	return out, nil
}

// Create validates and stores a new product. It starts with no stock.
func (s *Service) Create(ctx context.Context, in models.NewProduct) (models.PublicProduct, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return models.PublicProduct{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p, err := s.insert(ctx, in)
	if err != nil {
		return models.PublicProduct{}, err
	}
	out := p.WithCount(0)
	s.remember(ctx, out)
	return out, nil
}

// SetStock overwrites the stock count of an existing product.
func (s *Service) SetStock(ctx context.Context, id string, count int) (models.PublicProduct, error) {
	if count < 0 {
		return models.PublicProduct{}, fmt.Errorf("%w: count must not be negative", ErrInvalidInput)
	}
	return s.updateStock(ctx, id, func(ctx context.Context) (models.Stock, error) {
		return s.stock.SetCount(ctx, id, count)
	})
}

// AdjustStock adds delta to the stock count of an existing product. The
// addition happens in the store, so concurrent adjustments do not lose updates.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (models.PublicProduct, error) {
	return s.updateStock(ctx, id, func(ctx context.Context) (models.Stock, error) {
		return s.stock.AdjustCount(ctx, id, delta)
	})
}

func (s *Service) updateStock(ctx context.Context, id string, write func(context.Context) (models.Stock, error)) (models.PublicProduct, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return models.PublicProduct{}, err
	}
	st, err := write(ctx)
	if err != nil {
		return models.PublicProduct{}, err
	}

	out := p.WithCount(st.Count)
	s.remember(ctx, out)
	return out, nil
}

// insert assigns the id and creation time and writes the product.
func (s *Service) insert(ctx context.Context, in models.NewProduct) (models.Product, error) {
	p := models.Product{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CreatedAt:   s.now().UnixMilli(),
	}
	if err := s.products.Put(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Service) stockCount(ctx context.Context, id string) (int, error) {
	st, err := s.stock.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return st.Count, nil
}

func (s *Service) remember(ctx context.Context, p models.PublicProduct) {
	if err := s.cache.Set(ctx, p); err != nil {
		logger.Warn("failed to cache product", "product_id", p.ID, "error", err)
	}
}
