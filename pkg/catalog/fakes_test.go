package catalog

import (
	"context"
	"errors"
	"sync"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/notify"
	"gitlab.connectwisedev.com/product-catalog/pkg/store"
)

type memProducts struct {
	mu       sync.Mutex
	items    []models.Product
	putErr   error
	scanErr  error
	getCalls []string
	batches  [][]models.Product
}

func (m *memProducts) Put(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.items = append(m.items, p)
	return nil
}

func (m *memProducts) Get(_ context.Context, id string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, id)
	for _, p := range m.items {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, store.ErrNotFound
}

func (m *memProducts) Scan(_ context.Context, limit int32, startKey string) (store.Page, error) {
	if m.scanErr != nil {
		return store.Page{}, m.scanErr
	}
	start := 0
	if startKey != "" {
		for i, p := range m.items {
			if p.ID == startKey {
				start = i + 1
			}
		}
	}
	end := min(start+int(limit), len(m.items))
	page := store.Page{Items: append([]models.Product(nil), m.items[start:end]...)}
	if end > start && end < len(m.items) {
		page.LastEvaluatedKey = m.items[end-1].ID
	}
	return page, nil
}

func (m *memProducts) PutBatch(_ context.Context, products []models.Product) error {
	m.batches = append(m.batches, products)
	m.items = append(m.items, products...)
	return nil
}

type memStock struct {
	mu       sync.Mutex
	counts   map[string]int
	putErr   error
	getErr   error
	getCalls []string
}

func newMemStock() *memStock {
	return &memStock{counts: map[string]int{}}
}

func (m *memStock) Put(_ context.Context, s models.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.counts[s.ProductID] = s.Count
	return nil
}

func (m *memStock) Get(_ context.Context, id string) (models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, id)
	if m.getErr != nil {
		return models.Stock{}, m.getErr
	}
	c, ok := m.counts[id]
	if !ok {
		return models.Stock{}, store.ErrNotFound
	}
	return models.Stock{ProductID: id, Count: c}, nil
}

func (m *memStock) SetCount(_ context.Context, id string, count int) (models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] = count
	return models.Stock{ProductID: id, Count: count}, nil
}

func (m *memStock) AdjustCount(_ context.Context, id string, delta int) (models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] += delta
	return models.Stock{ProductID: id, Count: m.counts[id]}, nil
}

type recordingNotifier struct {
	messages []notify.Message
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

var errBoom = errors.New("boom")
