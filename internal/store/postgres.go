package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MYS158/shop-project/internal/catalog"
)

// productColumns is the select list shared by every read query.
const productColumns = "id, description, brand, content, category, price, status, date_made, expiration_date"

// schemaSQL bootstraps the single table this application owns.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
    id              INTEGER PRIMARY KEY,
    description     VARCHAR(30) NOT NULL,
    brand           VARCHAR(30) NOT NULL,
    content         VARCHAR(30) NOT NULL,
    category        VARCHAR(30) NOT NULL,
    price           NUMERIC(12,2) NOT NULL,
    status          VARCHAR(15) NOT NULL,
    date_made       DATE NOT NULL,
    expiration_date DATE NULL
)`

// Postgres is the pgx-backed catalog.Repository. Each operation
// acquires a pooled connection for its own duration and releases it on
// every exit path.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ catalog.Repository = (*Postgres)(nil)

// EnsureSchema creates the products table if it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return classify("ensure schema", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if r := catalog.Validate(p); !r.Valid() {
		return catalog.Product{}, catalog.NewValidationError(r)
	}
	p.Category = catalog.CanonicalCategory(p.Category)

	const q = `INSERT INTO products (id, description, brand, content, category, price, status, date_made, expiration_date)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, q,
		p.ID, p.Description, p.Brand, p.Content, p.Category,
		p.Price, p.Status(), toPgDate(p.DateMade), toPgDatePtr(p.ExpirationDate),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.Product{}, &catalog.DuplicateKeyError{ID: p.ID}
		}
		return catalog.Product{}, classify("create product", err)
	}
	return p, nil
}

func (s *Postgres) Update(ctx context.Context, p catalog.Product) (bool, error) {
	if r := catalog.Validate(p); !r.Valid() {
		return false, catalog.NewValidationError(r)
	}
	p.Category = catalog.CanonicalCategory(p.Category)

	const q = `UPDATE products
	           SET description = $1, brand = $2, content = $3, category = $4,
	               price = $5, status = $6, date_made = $7, expiration_date = $8
	           WHERE id = $9`
	tag, err := s.pool.Exec(ctx, q,
		p.Description, p.Brand, p.Content, p.Category,
		p.Price, p.Status(), toPgDate(p.DateMade), toPgDatePtr(p.ExpirationDate),
		p.ID,
	)
	if err != nil {
		return false, classify("update product", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) DeleteByID(ctx context.Context, id int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, classify("delete product", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int) (*catalog.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	row := s.pool.QueryRow(ctx, q, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("find product", err)
	}
	return &p, nil
}

func (s *Postgres) FindAll(ctx context.Context) ([]catalog.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)
	return s.queryProducts(ctx, q)
}

func (s *Postgres) SearchByDescription(ctx context.Context, pattern string) ([]catalog.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE description ILIKE $1 ORDER BY description`, productColumns)
	return s.queryProducts(ctx, q, "%"+pattern+"%")
}

func (s *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, classify("count products", err)
	}
	return n, nil
}

func (s *Postgres) ExistsByID(ctx context.Context, id int) (bool, error) {
	if !catalog.ValidID(id) {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, classify("product exists", err)
	}
	return exists, nil
}

func (s *Postgres) queryProducts(ctx context.Context, q string, args ...any) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, classify("query products", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classify("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("read products", err)
	}
	return out, nil
}

// scanProduct reads one row in productColumns order.
func scanProduct(row pgx.Row) (catalog.Product, error) {
	var (
		p          catalog.Product
		status     string
		made       pgtype.Date
		expiration pgtype.Date
	)
	err := row.Scan(&p.ID, &p.Description, &p.Brand, &p.Content,
		&p.Category, &p.Price, &status, &made, &expiration)
	if err != nil {
		return catalog.Product{}, err
	}

	p.Active, _ = catalog.ParseStatus(status)
	if made.Valid {
		p.DateMade = made.Time
	}
	if expiration.Valid {
		t := expiration.Time
		p.ExpirationDate = &t
	}
	return p, nil
}

func toPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func toPgDatePtr(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return toPgDate(*t)
}

// isUniqueViolation reports whether err is a SQLSTATE 23505 (unique
// constraint) failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// classify separates server-reported failures (constraints, bad SQL)
// from everything else, which is treated as the store being
// unreachable so callers can fall back or retry.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &catalog.ConnectivityError{Err: fmt.Errorf("%s: %w", op, err)}
}
