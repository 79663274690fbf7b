package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gitlab.connectwisedev.com/product-catalog/models"
)

const upsertProductSQL = `
	INSERT INTO products (id, title, description, price, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		price = EXCLUDED.price`

// PostgresProductStore keeps products in the products table.
type PostgresProductStore struct {
	db *sql.DB
}

// NewPostgresProductStore creates a product store over db.
func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Put(ctx context.Context, p models.Product) error {
	_, err := s.db.ExecContext(ctx, upsertProductSQL, p.ID, p.Title, p.Description, p.Price, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting product %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	row := s.db.QueryRowContext(ctx, `SELECT id, title, description, price, created_at FROM products WHERE id = $1`, id)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("querying product %s: %w", id, err)
	}
	return p, nil
}

// Scan pages by primary key. A full page reports its last id as the next
// start key, so the final call may return an empty page.
func (s *PostgresProductStore) Scan(ctx context.Context, limit int32, startKey string) (Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, price, created_at FROM products
		WHERE id > $1 ORDER BY id LIMIT $2`, startKey, limit)
	if err != nil {
		return Page{}, fmt.Errorf("scanning products: %w", err)
	}
	defer rows.Close()

	page := Page{Items: []models.Product{}}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("scanning product row: %w", err)
		}
		page.Items = append(page.Items, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("error during row iteration: %w", err)
	}

	if limit > 0 && len(page.Items) == int(limit) {
		page.LastEvaluatedKey = page.Items[len(page.Items)-1].ID
	}
	return page, nil
}

// PutBatch upserts all products in one transaction.
func (s *PostgresProductStore) PutBatch(ctx context.Context, products []models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error by default

	for _, p := range products {
		if _, err := tx.ExecContext(ctx, upsertProductSQL, p.ID, p.Title, p.Description, p.Price, p.CreatedAt); err != nil {
			return fmt.Errorf("upserting product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PostgresStockStore keeps stock rows in the stock table.
type PostgresStockStore struct {
	db *sql.DB
}

// NewPostgresStockStore creates a stock store over db.
func NewPostgresStockStore(db *sql.DB) *PostgresStockStore {
	return &PostgresStockStore{db: db}
}

func (s *PostgresStockStore) Put(ctx context.Context, st models.Stock) error {
	_, err := s.SetCount(ctx, st.ProductID, st.Count)
	return err
}

func (s *PostgresStockStore) Get(ctx context.Context, productID string) (models.Stock, error) {
	var st models.Stock
	row := s.db.QueryRowContext(ctx, `SELECT product_id, count FROM stock WHERE product_id = $1`, productID)
	err := row.Scan(&st.ProductID, &st.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNotFound
	}
	if err != nil {
		return st, fmt.Errorf("querying stock for %s: %w", productID, err)
	}
	return st, nil
}

func (s *PostgresStockStore) SetCount(ctx context.Context, productID string, count int) (models.Stock, error) {
	return s.upsert(ctx, `
		INSERT INTO stock (product_id, count) VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET count = EXCLUDED.count
		RETURNING product_id, count`, productID, count)
}

func (s *PostgresStockStore) AdjustCount(ctx context.Context, productID string, delta int) (models.Stock, error) {
	return s.upsert(ctx, `
		INSERT INTO stock (product_id, count) VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET count = stock.count + EXCLUDED.count
		RETURNING product_id, count`, productID, delta)
}

func (s *PostgresStockStore) upsert(ctx context.Context, query, productID string, n int) (models.Stock, error) {
	var st models.Stock
	if err := s.db.QueryRowContext(ctx, query, productID, n).Scan(&st.ProductID, &st.Count); err != nil {
		return st, fmt.Errorf("writing stock for %s: %w", productID, err)
	}
	return st, nil
}
