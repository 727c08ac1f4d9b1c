package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MYS158/shop-project/internal/catalog"
)

func testProduct(id int) catalog.Product {
	return catalog.Product{
		ID:          id,
		Description: "Test product",
		Brand:       "TestBrand",
		Content:     "1 unit",
		Category:    "Groceries",
		Price:       9.99,
		Active:      true,
		DateMade:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryCreate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Create(ctx, testProduct(100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 100 {
		t.Errorf("created.ID = %d, want 100", created.ID)
	}

	exists, err := m.ExistsByID(ctx, 100)
	if err != nil || !exists {
		t.Errorf("ExistsByID(100) = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestMemoryCreate_Duplicate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, testProduct(100)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := m.Create(ctx, testProduct(100))
	if !catalog.IsDuplicateKeyError(err) {
		t.Fatalf("Create(dup) error = %v, want DuplicateKeyError", err)
	}
}

func TestMemoryCreate_Invalid(t *testing.T) {
	m := NewMemory()

	_, err := m.Create(context.Background(), catalog.Product{ID: 0})
	if !catalog.IsValidationError(err) {
		t.Fatalf("Create(invalid) error = %v, want ValidationError", err)
	}
}

func TestMemoryCreate_CanonicalizesCategory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	p := testProduct(100)
	p.Category = "  groceries "
	if _, err := m.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, _ := m.FindByID(ctx, 100)
	if got == nil || got.Category != "Groceries" {
		t.Errorf("stored category = %v, want Groceries", got)
	}
}

func TestMemoryUpdate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, testProduct(100)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p := testProduct(100)
	p.Price = 20
	ok, err := m.Update(ctx, p)
	if err != nil || !ok {
		t.Fatalf("Update() = (%v, %v), want (true, nil)", ok, err)
	}

	got, _ := m.FindByID(ctx, 100)
	if got.Price != 20 {
		t.Errorf("price after update = %v, want 20", got.Price)
	}

	ok, err = m.Update(ctx, testProduct(999))
	if err != nil || ok {
		t.Errorf("Update(missing) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, testProduct(100)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ok, err := m.DeleteByID(ctx, 100)
	if err != nil || !ok {
		t.Fatalf("DeleteByID() = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = m.DeleteByID(ctx, 100)
	if err != nil || ok {
		t.Errorf("second DeleteByID() = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMemoryFindByID_Absent(t *testing.T) {
	m := NewMemory()

	p, err := m.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if p != nil {
		t.Errorf("FindByID(absent) = %v, want nil", p)
	}
}

func TestMemoryFindAll_Ordered(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, id := range []int{300, 100, 200} {
		if _, err := m.Create(ctx, testProduct(id)); err != nil {
			t.Fatalf("Create(%d) error = %v", id, err)
		}
	}

	all, err := m.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	want := []int{100, 200, 300}
	if len(all) != len(want) {
		t.Fatalf("FindAll() = %d records, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("FindAll()[%d].ID = %d, want %d", i, all[i].ID, id)
		}
	}
}

func TestMemorySearchByDescription(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	fixtures := map[int]string{
		100: "Dark chocolate",
		200: "Chocolate milk",
		300: "Shampoo",
	}
	for id, desc := range fixtures {
		p := testProduct(id)
		p.Description = desc
		if _, err := m.Create(ctx, p); err != nil {
			t.Fatalf("Create(%d) error = %v", id, err)
		}
	}

	got, err := m.SearchByDescription(ctx, "CHOC")
	if err != nil {
		t.Fatalf("SearchByDescription() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SearchByDescription() = %d records, want 2", len(got))
	}
	// Ordered by description
	if got[0].Description != "Chocolate milk" || got[1].Description != "Dark chocolate" {
		t.Errorf("order = [%q, %q], want description ascending",
			got[0].Description, got[1].Description)
	}
}

func TestMemoryCount(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if n, _ := m.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
	m.SeedDemo()
	if n, _ := m.Count(ctx); n != 2 {
		t.Errorf("Count() after seed = %d, want 2", n)
	}
}

func TestMemoryExistsByID_OutOfRange(t *testing.T) {
	m := NewMemory()
	m.SeedDemo()

	for _, id := range []int{0, -1, 10000} {
		exists, err := m.ExistsByID(context.Background(), id)
		if err != nil {
			t.Fatalf("ExistsByID(%d) error = %v", id, err)
		}
		if exists {
			t.Errorf("ExistsByID(%d) = true, want false", id)
		}
	}
}

func TestMemoryContextCancelled(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Create(ctx, testProduct(100)); err == nil {
		t.Error("Create() with cancelled context succeeded")
	}
	if _, err := m.FindAll(ctx); err == nil {
		t.Error("FindAll() with cancelled context succeeded")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := m.Create(ctx, testProduct(id)); err != nil {
				t.Errorf("Create(%d) error = %v", id, err)
			}
			if _, err := m.FindAll(ctx); err != nil {
				t.Errorf("FindAll() error = %v", err)
			}
		}(i + 1)
	}
	wg.Wait()

	if n, _ := m.Count(ctx); n != 50 {
		t.Errorf("Count() = %d, want 50", n)
	}
}
