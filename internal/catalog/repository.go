package catalog

import "context"

// Repository is the persistence contract for products. Both the
// Postgres store and the in-memory fallback implement it; the service
// layer never knows which one it is talking to.
//
// Absence is not an error: FindByID returns nil for a missing id,
// Update and DeleteByID return false when no row was affected, and
// ExistsByID returns false for ids that are out of range.
type Repository interface {
	// Create re-validates the candidate and inserts it. Returns the
	// persisted record, *ValidationError on invalid input, or
	// *DuplicateKeyError when the id is already taken.
	Create(ctx context.Context, p Product) (Product, error)

	// Update re-validates and rewrites all mutable columns by id.
	// Returns false when the id matched no row.
	Update(ctx context.Context, p Product) (bool, error)

	// DeleteByID removes the record. Returns false when the id matched
	// no row.
	DeleteByID(ctx context.Context, id int) (bool, error)

	// FindByID returns the record, or nil when absent.
	FindByID(ctx context.Context, id int) (*Product, error)

	// FindAll returns every record ordered by id ascending.
	FindAll(ctx context.Context) ([]Product, error)

	// SearchByDescription returns records whose description contains
	// pattern (case-insensitive), ordered by description.
	SearchByDescription(ctx context.Context, pattern string) ([]Product, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// ExistsByID reports whether a record with the id exists. An id
	// outside the valid range is simply absent, not an error.
	ExistsByID(ctx context.Context, id int) (bool, error)
}
