// Package api adapts API Gateway proxy requests to the catalog and import
// operations.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/catalog"
	"gitlab.connectwisedev.com/product-catalog/pkg/importer"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

const (
	methodsProducts = "GET,POST,OPTIONS"
	methodsStock    = "PUT,PATCH,OPTIONS"
	methodsImport   = "GET,OPTIONS"

	maxPageSize = 100
)

// Catalog is the part of *catalog.Service the handlers call.
type Catalog interface {
	List(ctx context.Context, limit int32, startKey string) (catalog.ListResult, error)
	Get(ctx context.Context, id string) (models.PublicProduct, error)
	Create(ctx context.Context, in models.NewProduct) (models.PublicProduct, error)
	SetStock(ctx context.Context, id string, count int) (models.PublicProduct, error)
	AdjustStock(ctx context.Context, id string, delta int) (models.PublicProduct, error)
}

var _ Catalog = (*catalog.Service)(nil)

// Uploader signs upload URLs for import files.
type Uploader interface {
	SignUpload(ctx context.Context, fileName string) (importer.UploadTicket, error)
}

var _ Uploader = (*importer.UploadAuthorizer)(nil)

// Handlers serves the HTTP-facing operations. Either dependency may be nil
// for a function that does not use it.
type Handlers struct {
	catalog  Catalog
	uploads  Uploader
	pageSize int32
}

func NewHandlers(c Catalog, u Uploader, pageSize int32) *Handlers {
	return &Handlers{catalog: c, uploads: u, pageSize: pageSize}
}

// ListProducts handles GET /products?limit=&startKey=.
func (h *Handlers) ListProducts(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	limit := h.pageSize
	if raw := req.QueryStringParameters["limit"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fail(http.StatusBadRequest, methodsProducts, "limit must be a positive integer"), nil
		}
		limit = int32(min(n, maxPageSize))
	}

	res, err := h.catalog.List(ctx, limit, req.QueryStringParameters["startKey"])
	if err != nil {
		return h.failure(methodsProducts, err), nil
	}

	items := res.Items
	if items == nil {
		items = []models.PublicProduct{}
	}
	return ok(methodsProducts, Envelope{Data: items, LastEvaluatedKey: res.LastEvaluatedKey}), nil
}

// GetProduct handles GET /products/{productId}.
func (h *Handlers) GetProduct(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := strings.TrimSpace(req.PathParameters["productId"])
	if id == "" {
		return fail(http.StatusBadRequest, methodsProducts, "Missing productId parameter"), nil
	}

	p, err := h.catalog.Get(ctx, id)
	if err != nil {
		return h.failure(methodsProducts, err), nil
	}
	return ok(methodsProducts, Envelope{Data: p}), nil
}

// CreateProduct handles POST /products.
func (h *Handlers) CreateProduct(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var in models.NewProduct
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return fail(http.StatusBadRequest, methodsProducts, "Invalid request body"), nil
	}

	p, err := h.catalog.Create(ctx, in)
	if err != nil {
		return h.failure(methodsProducts, err), nil
	}
	return ok(methodsProducts, Envelope{Data: p}), nil
}

// stockRequest carries exactly one of Count (absolute) or Delta (relative).
type stockRequest struct {
	Count *int `json:"count"`
	Delta *int `json:"delta"`
}

// UpdateStock handles PUT/PATCH /products/{productId}/stock.
func (h *Handlers) UpdateStock(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := strings.TrimSpace(req.PathParameters["productId"])
	if id == "" {
		return fail(http.StatusBadRequest, methodsStock, "Missing productId parameter"), nil
	}

	var in stockRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return fail(http.StatusBadRequest, methodsStock, "Invalid request body"), nil
	}

	var (
		p   models.PublicProduct
		err error
	)
	switch {
	case in.Count != nil && in.Delta == nil:
		p, err = h.catalog.SetStock(ctx, id, *in.Count)
	case in.Delta != nil && in.Count == nil:
		p, err = h.catalog.AdjustStock(ctx, id, *in.Delta)
	default:
		return fail(http.StatusBadRequest, methodsStock, "Provide either count or delta"), nil
	}
	if err != nil {
		return h.failure(methodsStock, err), nil
	}
	return ok(methodsStock, Envelope{Data: p}), nil
}

// ImportProductsFile handles GET /import?fileName=.
func (h *Handlers) ImportProductsFile(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ticket, err := h.uploads.SignUpload(ctx, req.QueryStringParameters["fileName"])
	if err != nil {
		return h.failure(methodsImport, err), nil
	}
	logger.Info("upload url issued", "key", ticket.Key, "expires_in", ticket.ExpiresIn.String())
	return ok(methodsImport, Envelope{SignedURL: ticket.SignedURL}), nil
}

func (h *Handlers) failure(methods string, err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, importer.ErrMissingParameter):
		return fail(http.StatusBadRequest, methods, "Missing fileName parameter")
	case errors.Is(err, catalog.ErrInvalidInput):
		return fail(http.StatusBadRequest, methods, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		return fail(http.StatusNotFound, methods, "Product not found")
	case errors.Is(err, catalog.ErrListProducts):
		logger.Error("list products failed", "error", err)
		return fail(http.StatusInternalServerError, methods, catalog.ErrListProducts.Error())
	default:
		logger.Error("request failed", "error", err)
		return fail(http.StatusInternalServerError, methods, "Internal server error")
	}
}
