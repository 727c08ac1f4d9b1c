package catalog

// service.go is the application layer behind every user-triggered
// action: add, update, delete, consult, search, refresh, export,
// import and stats. It builds candidates, rejects invalid input before
// storage is touched, and translates repository failures into the
// typed outcomes the surfaces render.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SearchScope selects which field a search query is matched against.
type SearchScope string

const (
	ScopeAll         SearchScope = "all"
	ScopeDescription SearchScope = "description"
	ScopeBrand       SearchScope = "brand"
	ScopeCategory    SearchScope = "category"
	ScopeID          SearchScope = "id"
)

// ParseScope maps a raw scope value to a SearchScope, defaulting to
// ScopeAll for empty or unknown values.
func ParseScope(s string) SearchScope {
	switch SearchScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeDescription, ScopeBrand, ScopeCategory, ScopeID:
		return SearchScope(strings.ToLower(strings.TrimSpace(s)))
	default:
		return ScopeAll
	}
}

// Encoder serializes a record set to a sink. The production
// implementation is the CSV transfer service.
type Encoder interface {
	Write(w io.Writer, products []Product) error
}

// ImportRow is one parse outcome from an ImportSource: either a
// candidate product or the reason the line could not be parsed.
type ImportRow struct {
	Line    int
	Product Product
	Err     error
}

// ImportSource is a lazy, finite, non-restartable sequence of parse
// outcomes, typically backed by a CSV file.
type ImportSource interface {
	// Scan advances to the next row. It returns false when the
	// sequence is exhausted.
	Scan() bool
	// Row returns the current parse outcome.
	Row() ImportRow
	// Err returns the first terminal read error, if any.
	Err() error
}

// ImportError records why a single row was rejected.
type ImportError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport tallies an import run. One bad row never blocks the
// rest of the file; failures accumulate here instead.
type ImportReport struct {
	JobID    string        `json:"jobId"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// Service orchestrates the named user actions against a Repository and
// an Encoder.
type Service struct {
	repo Repository
	enc  Encoder
}

// NewService creates a Service backed by the given repository and
// record encoder.
func NewService(repo Repository, enc Encoder) *Service {
	return &Service{repo: repo, enc: enc}
}

// Add validates the candidate and inserts it.
func (s *Service) Add(ctx context.Context, p Product) (Product, error) {
	if r := Validate(p); !r.Valid() {
		return Product{}, NewValidationError(r)
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	slog.InfoContext(ctx, "product added", "id", created.ID)
	return created, nil
}

// Update validates the candidate and rewrites the stored record.
// A missing id is reported as (false, nil), not as an error.
func (s *Service) Update(ctx context.Context, p Product) (bool, error) {
	if r := Validate(p); !r.Valid() {
		return false, NewValidationError(r)
	}
	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		return false, err
	}
	if ok {
		slog.InfoContext(ctx, "product updated", "id", p.ID)
	}
	return ok, nil
}

// Delete removes a record by id. A missing id is (false, nil).
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		slog.InfoContext(ctx, "product deleted", "id", id)
	}
	return ok, nil
}

// Find returns the record for id, or nil when absent.
func (s *Service) Find(ctx context.Context, id int) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns the full record set ordered by id.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.FindAll(ctx)
}

// Search returns the records matching query within the given scope.
// Matching is case-insensitive substring containment; the id scope
// requires exact equality. An empty query returns the full set.
func (s *Service) Search(ctx context.Context, query string, scope SearchScope) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.FindAll(ctx)
	}

	// The description scope maps directly onto the repository's
	// search operation; everything else filters the full set.
	if scope == ScopeDescription {
		return s.repo.SearchByDescription(ctx, query)
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := make([]Product, 0, len(all))
	for _, p := range all {
		if matchesScope(p, q, scope) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func matchesScope(p Product, q string, scope SearchScope) bool {
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	}
	switch scope {
	case ScopeBrand:
		return contains(p.Brand)
	case ScopeCategory:
		return contains(p.Category)
	case ScopeID:
		id, err := strconv.Atoi(q)
		return err == nil && p.ID == id
	default: // ScopeAll
		return contains(p.Description) ||
			contains(p.Brand) ||
			contains(p.Category) ||
			contains(p.Content) ||
			strings.Contains(strconv.Itoa(p.ID), q)
	}
}

// Export writes the full record set to w through the encoder and
// returns the number of records written.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.enc.Write(w, products); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	slog.InfoContext(ctx, "products exported", "count", len(products))
	return len(products), nil
}

// Import consumes the source row by row, validating and inserting each
// successfully parsed candidate. Parse failures, validation failures
// and insert failures are tallied per line; none of them aborts the
// run. Storage connectivity loss does.
func (s *Service) Import(ctx context.Context, src ImportSource) (ImportReport, error) {
	report := ImportReport{JobID: uuid.New().String()}
	log := slog.With("import_job", report.JobID)
	log.InfoContext(ctx, "import started")

	for src.Scan() {
		row := src.Row()

		if row.Err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Line: row.Line, Reason: row.Err.Error()})
			continue
		}

		if r := Validate(row.Product); !r.Valid() {
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Line: row.Line, Reason: r.String()})
			continue
		}

		if _, err := s.repo.Create(ctx, row.Product); err != nil {
			if IsConnectivityError(err) {
				return report, err
			}
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Line: row.Line, Reason: err.Error()})
			continue
		}
		report.Imported++
	}

	if err := src.Err(); err != nil {
		return report, fmt.Errorf("import read: %w", err)
	}

	log.InfoContext(ctx, "import finished",
		"imported", report.Imported,
		"failed", report.Failed,
	)
	return report, nil
}

// Stats aggregates the current full record set.
func (s *Service) Stats(ctx context.Context) (Statistics, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(products), nil
}
