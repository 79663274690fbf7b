package models

// Product represents a catalog item as stored in the products table
type Product struct {
	ID          string  `json:"id" dynamodbav:"id"` // UUID as string
	Title       string  `json:"title" dynamodbav:"title"`
	Description string  `json:"description" dynamodbav:"description"`
	Price       float64 `json:"price" dynamodbav:"price"`
	CreatedAt   int64   `json:"createdAt" dynamodbav:"createdAt"` // Unix millis
}

// Stock holds the inventory count for one product
type Stock struct {
	ProductID string `json:"product_id" dynamodbav:"product_id"`
	Count     int    `json:"count" dynamodbav:"count"`
}

// PublicProduct is a product enriched with its stock count, as returned by the API
type PublicProduct struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Count       int     `json:"count"`
}

// NewProduct is the input accepted by the create-product operation
type NewProduct struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// WithCount merges a product and its stock count into the public shape
func (p Product) WithCount(count int) PublicProduct {
	return PublicProduct{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Count:       count,
	}
}
