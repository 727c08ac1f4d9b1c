// Package store provides the Repository implementations: a Postgres
// store for normal operation and an in-memory store used as the
// fallback when no database is reachable. Both honor the same
// contract; callers cannot tell them apart.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MYS158/shop-project/internal/catalog"
)

// Memory is a mutex-guarded in-memory catalog.Repository.
type Memory struct {
	mu       sync.RWMutex
	products map[int]catalog.Product
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{products: make(map[int]catalog.Product)}
}

var _ catalog.Repository = (*Memory)(nil)

// SeedDemo populates the store with a couple of sample records so the
// fallback mode is not an empty screen.
func (m *Memory) SeedDemo() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[1] = catalog.Product{
		ID: 1, Description: "Sample product A", Brand: "Generic",
		Content: "1 unit", Category: "Groceries", Price: 12.5,
		Active: true, DateMade: now,
	}
	m.products[2] = catalog.Product{
		ID: 2, Description: "Sample product B", Brand: "BrandZ",
		Content: "1 unit", Category: "Personal Hygiene", Price: 35,
		Active: false, DateMade: now,
	}
}

func (m *Memory) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Product{}, err
	}
	if r := catalog.Validate(p); !r.Valid() {
		return catalog.Product{}, catalog.NewValidationError(r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.products[p.ID]; exists {
		return catalog.Product{}, &catalog.DuplicateKeyError{ID: p.ID}
	}
	p.Category = catalog.CanonicalCategory(p.Category)
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) Update(ctx context.Context, p catalog.Product) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r := catalog.Validate(p); !r.Valid() {
		return false, catalog.NewValidationError(r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.products[p.ID]; !exists {
		return false, nil
	}
	p.Category = catalog.CanonicalCategory(p.Category)
	m.products[p.ID] = p
	return true, nil
}

func (m *Memory) DeleteByID(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.products[id]; !exists {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *Memory) FindByID(ctx context.Context, id int) (*catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) FindAll(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SearchByDescription(ctx context.Context, pattern string) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.ToLower(pattern)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []catalog.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.products)), nil
}

func (m *Memory) ExistsByID(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !catalog.ValidID(id) {
		return false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.products[id]
	return ok, nil
}
