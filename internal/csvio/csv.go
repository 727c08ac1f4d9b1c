// Package csvio implements the CSV transfer format for product
// records: an RFC-4180 export writer and a lazy per-line import
// scanner. It is independent of the repository; callers decide what
// happens to each parsed candidate.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MYS158/shop-project/internal/catalog"
)

// DateLayout is the on-disk date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// Header is the column row every export starts with and every import
// expects to skip.
var Header = []string{
	"ID", "Description", "Brand", "Content", "Price",
	"Category", "Status", "DateMade", "ExpirationDate",
}

// ParseError reports a single input line that could not be converted
// to a candidate record.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: parse: %s", e.Line, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// Transfer is the CSV serializer/deserializer. The zero value is ready
// to use; it satisfies catalog.Encoder.
type Transfer struct{}

// Write writes one header line followed by one line per record.
// Fields containing commas, quotes or newlines are quoted with doubled
// internal quotes. Dates use dd/mm/yyyy; the active flag is written as
// "Active"/"Inactive"; a nil expiration date becomes an empty field.
func (Transfer) Write(w io.Writer, products []catalog.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range products {
		if err := cw.Write(recordFields(p)); err != nil {
			return fmt.Errorf("write record id=%d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordFields(p catalog.Product) []string {
	expiration := ""
	if p.ExpirationDate != nil {
		expiration = p.ExpirationDate.Format(DateLayout)
	}
	return []string{
		strconv.Itoa(p.ID),
		p.Description,
		p.Brand,
		p.Content,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		p.Category,
		p.Status(),
		p.DateMade.Format(DateLayout),
		expiration,
	}
}

// Scanner reads an import file line by line, turning each data row
// into a candidate record or a per-line ParseError. The sequence is
// lazy, finite and non-restartable; a bad row never stops the scan.
type Scanner struct {
	r       *csv.Reader
	started bool
	row     catalog.ImportRow
	err     error
	done    bool
}

// NewScanner creates a Scanner over r. A UTF-8 byte order mark at the
// start of the input is skipped.
func NewScanner(r io.Reader) *Scanner {
	cr := csv.NewReader(NewBOMSkippingReader(r))
	cr.FieldsPerRecord = -1
	return &Scanner{r: cr}
}

// Scan advances to the next data row. It returns false at end of input
// or on a terminal read failure (see Err).
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}

	if !s.started {
		s.started = true
		// Skip the header line.
		if _, err := s.r.Read(); err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return false
		}
	}

	fields, err := s.r.Read()
	switch {
	case err == nil:
		// Physical line of the record, correct even when a quoted
		// field spans newlines.
		line, _ := s.r.FieldPos(0)
		p, perr := parseRecord(fields, line)
		s.row = catalog.ImportRow{Line: line, Product: p, Err: perr}
		return true
	case errors.Is(err, io.EOF):
		s.done = true
		return false
	default:
		var cerr *csv.ParseError
		if errors.As(err, &cerr) {
			// Malformed quoting on one line; report it and keep going.
			s.row = catalog.ImportRow{
				Line: cerr.StartLine,
				Err:  &ParseError{Line: cerr.StartLine, Reason: cerr.Err.Error()},
			}
			return true
		}
		s.done = true
		s.err = err
		return false
	}
}

// Row returns the current parse outcome. Valid until the next Scan.
func (s *Scanner) Row() catalog.ImportRow { return s.row }

// Err returns the first terminal read error, if any. Per-line parse
// failures are reported through Row, not here.
func (s *Scanner) Err() error { return s.err }

// parseRecord converts one CSV data row into a candidate product.
// Field-level invariants (id range, category membership, date order)
// are left to validation; this only rejects rows that cannot be read
// at all.
func parseRecord(fields []string, line int) (catalog.Product, error) {
	if len(fields) != len(Header) {
		return catalog.Product{}, &ParseError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(Header), len(fields)),
		}
	}

	var p catalog.Product

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return catalog.Product{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid id %q", fields[0])}
	}
	p.ID = id

	p.Description = strings.TrimSpace(fields[1])
	p.Brand = strings.TrimSpace(fields[2])
	p.Content = strings.TrimSpace(fields[3])

	price, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return catalog.Product{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid price %q", fields[4])}
	}
	p.Price = price

	p.Category = strings.TrimSpace(fields[5])

	active, ok := catalog.ParseStatus(fields[6])
	if !ok {
		return catalog.Product{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid status %q", fields[6])}
	}
	p.Active = active

	// An empty DateMade parses to the zero time; validation reports it
	// as a missing date rather than a parse failure.
	if raw := strings.TrimSpace(fields[7]); raw != "" {
		made, err := time.Parse(DateLayout, raw)
		if err != nil {
			return catalog.Product{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid date %q", fields[7])}
		}
		p.DateMade = made
	}

	if raw := strings.TrimSpace(fields[8]); raw != "" {
		exp, err := time.Parse(DateLayout, raw)
		if err != nil {
			return catalog.Product{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid date %q", fields[8])}
		}
		p.ExpirationDate = &exp
	}

	return p, nil
}
