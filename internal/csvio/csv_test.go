package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MYS158/shop-project/internal/catalog"
)

func sampleProduct() catalog.Product {
	return catalog.Product{
		ID:          42,
		Description: "Dark chocolate",
		Brand:       "Choco",
		Content:     "100g",
		Category:    "Groceries",
		Price:       12.5,
		Active:      true,
		DateMade:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestWrite_Format(t *testing.T) {
	p := sampleProduct()
	exp := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	p.ExpirationDate = &exp

	var buf bytes.Buffer
	if err := (Transfer{}).Write(&buf, []catalog.Product{p}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Write() produced %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if lines[0] != "ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate" {
		t.Errorf("header = %q", lines[0])
	}
	want := "42,Dark chocolate,Choco,100g,12.5,Groceries,Active,10/03/2025,02/01/2026"
	if lines[1] != want {
		t.Errorf("record = %q, want %q", lines[1], want)
	}
}

func TestWrite_QuotingAndEmptyExpiration(t *testing.T) {
	p := sampleProduct()
	p.Description = `Chips "party", family size`
	p.Active = false

	var buf bytes.Buffer
	if err := (Transfer{}).Write(&buf, []catalog.Product{p}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"Chips ""party"", family size"`) {
		t.Errorf("commas/quotes not escaped: %q", out)
	}
	if !strings.Contains(out, "Inactive") {
		t.Errorf("inactive status missing: %q", out)
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), ",10/03/2025,") {
		t.Errorf("nil expiration should be an empty trailing field: %q", out)
	}
}

func TestWrite_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	if err := (Transfer{}).Write(&buf, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export = %q, want header only", buf.String())
	}
}

func collectRows(t *testing.T, input string) []catalog.ImportRow {
	t.Helper()
	s := NewScanner(strings.NewReader(input))
	var rows []catalog.ImportRow
	for s.Scan() {
		rows = append(rows, s.Row())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Scanner.Err() = %v", err)
	}
	return rows
}

func TestScanner_RoundTrip(t *testing.T) {
	p := sampleProduct()
	exp := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	p.ExpirationDate = &exp

	var buf bytes.Buffer
	if err := (Transfer{}).Write(&buf, []catalog.Product{p}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rows := collectRows(t, buf.String())
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Err != nil {
		t.Fatalf("row error = %v", row.Err)
	}
	got := row.Product
	if got.ID != p.ID || got.Description != p.Description || got.Brand != p.Brand ||
		got.Content != p.Content || got.Category != p.Category || got.Price != p.Price ||
		got.Active != p.Active {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, p)
	}
	if !got.DateMade.Equal(p.DateMade) {
		t.Errorf("DateMade = %v, want %v", got.DateMade, p.DateMade)
	}
	if got.ExpirationDate == nil || !got.ExpirationDate.Equal(exp) {
		t.Errorf("ExpirationDate = %v, want %v", got.ExpirationDate, exp)
	}
}

func TestScanner_LineNumbersAndBadRows(t *testing.T) {
	input := strings.Join([]string{
		"ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate",
		"1,Milk,DairyBest,1L,18.9,Groceries,Active,10/03/2025,",
		"x,Milk,DairyBest,1L,18.9,Groceries,Active,10/03/2025,",
		"3,Milk,DairyBest,1L,not-a-price,Groceries,Active,10/03/2025,",
		"4,Milk,DairyBest,1L,18.9,Groceries,maybe,10/03/2025,",
		"5,Milk,DairyBest,1L,18.9,Groceries,Active,2025-03-10,",
		"6,Milk,DairyBest",
		"7,Milk,DairyBest,1L,18.9,Groceries,inactive,10/03/2025,11/03/2025",
	}, "\n")

	rows := collectRows(t, input)
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7", len(rows))
	}

	// Data lines are numbered from 2, after the header.
	if rows[0].Line != 2 || rows[0].Err != nil {
		t.Errorf("rows[0] = %+v, want clean line 2", rows[0])
	}

	wantBad := []int{1, 2, 3, 4, 5}
	for _, i := range wantBad {
		if rows[i].Err == nil {
			t.Errorf("rows[%d] (line %d) expected parse error", i, rows[i].Line)
			continue
		}
		var pe *ParseError
		if !errors.As(rows[i].Err, &pe) {
			t.Errorf("rows[%d] error = %T, want *ParseError", i, rows[i].Err)
		}
	}

	last := rows[6]
	if last.Err != nil {
		t.Fatalf("rows[6] error = %v", last.Err)
	}
	if last.Product.Active {
		t.Error("case-insensitive status not honored")
	}
	if last.Product.ExpirationDate == nil {
		t.Error("expiration date dropped")
	}
}

func TestScanner_QuotedNewlineKeepsLineNumbers(t *testing.T) {
	// The second record spans two physical lines; the bad row after it
	// must still be reported with its real line number.
	input := strings.Join([]string{
		"ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate",
		"1,Milk,DairyBest,1L,18.9,Groceries,Active,10/03/2025,",
		`2,"Crackers`,
		`family size",SnackCo,500g,24,Groceries,Active,10/03/2025,`,
		"x,Milk,DairyBest,1L,18.9,Groceries,Active,10/03/2025,",
	}, "\n")

	rows := collectRows(t, input)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Line != 2 || rows[0].Err != nil {
		t.Errorf("rows[0] = %+v, want clean line 2", rows[0])
	}
	if rows[1].Line != 3 || rows[1].Err != nil {
		t.Errorf("rows[1] = %+v, want clean line 3", rows[1])
	}
	if rows[1].Product.Description != "Crackers\nfamily size" {
		t.Errorf("rows[1].Description = %q", rows[1].Product.Description)
	}
	if rows[2].Line != 5 {
		t.Errorf("rows[2].Line = %d, want 5", rows[2].Line)
	}
	if rows[2].Err == nil {
		t.Error("rows[2] expected parse error")
	}
}

func TestScanner_MalformedQuoteKeepsGoing(t *testing.T) {
	input := strings.Join([]string{
		"ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate",
		`1,"Unterminated,DairyBest,1L,18.9,Groceries,Active,10/03/2025,`,
	}, "\n")

	s := NewScanner(strings.NewReader(input))
	if !s.Scan() {
		t.Fatalf("Scan() = false, want bad-quote row; Err = %v", s.Err())
	}
	if s.Row().Err == nil {
		t.Error("malformed quoting not reported")
	}
	if s.Scan() {
		t.Error("Scan() after final row = true, want false")
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
}

func TestScanner_SkipsBOM(t *testing.T) {
	input := "\xEF\xBB\xBF" + strings.Join([]string{
		"ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate",
		"1,Milk,DairyBest,1L,18.9,Groceries,Active,10/03/2025,",
	}, "\n")

	rows := collectRows(t, input)
	if len(rows) != 1 || rows[0].Err != nil {
		t.Fatalf("rows = %+v, want one clean row", rows)
	}
	if rows[0].Product.ID != 1 {
		t.Errorf("ID = %d, want 1", rows[0].Product.ID)
	}
}

func TestScanner_EmptyInput(t *testing.T) {
	s := NewScanner(strings.NewReader(""))
	if s.Scan() {
		t.Error("Scan() on empty input = true, want false")
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
}

func TestScanner_HeaderOnly(t *testing.T) {
	rows := collectRows(t, "ID,Description,Brand,Content,Price,Category,Status,DateMade,ExpirationDate\n")
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none", rows)
	}
}

func TestBOMSkippingReader_ShortInput(t *testing.T) {
	// Inputs shorter than a BOM must come through intact.
	r := NewBOMSkippingReader(strings.NewReader("ab"))
	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf[:n]) != "ab" {
		t.Errorf("Read() = %q, want %q", buf[:n], "ab")
	}
}
