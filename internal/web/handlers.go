package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MYS158/shop-project/internal/catalog"
	"github.com/MYS158/shop-project/internal/csvio"
	"github.com/MYS158/shop-project/internal/logging"
)

// dateLayout is the wire format for dates in JSON payloads.
const dateLayout = "2006-01-02"

// productPayload is the JSON shape of a product on the wire. Dates are
// YYYY-MM-DD strings and status is the Active/Inactive token, matching
// what forms submit.
type productPayload struct {
	ID             int     `json:"id"`
	Description    string  `json:"description"`
	Brand          string  `json:"brand"`
	Content        string  `json:"content"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	DateMade       string  `json:"dateMade"`
	ExpirationDate string  `json:"expirationDate,omitempty"`
}

// toProduct converts the payload to a candidate record. Unreadable
// values are reported as violations so the caller sees them alongside
// the field invariant failures.
func (pl productPayload) toProduct() (catalog.Product, []string) {
	var violations []string

	p := catalog.Product{
		ID:          pl.ID,
		Description: pl.Description,
		Brand:       pl.Brand,
		Content:     pl.Content,
		Category:    pl.Category,
		Price:       pl.Price,
	}

	// Stores persist the canonical category spelling; echo the same.
	if c := catalog.CanonicalCategory(pl.Category); c != "" {
		p.Category = c
	}

	active, ok := catalog.ParseStatus(pl.Status)
	if !ok {
		violations = append(violations, "Status must be 'Active' or 'Inactive'.")
	}
	p.Active = active

	if raw := strings.TrimSpace(pl.DateMade); raw != "" {
		made, err := time.Parse(dateLayout, raw)
		if err != nil {
			violations = append(violations, fmt.Sprintf("DateMade %q is not a valid date (use YYYY-MM-DD).", raw))
		} else {
			p.DateMade = made
		}
	}

	if raw := strings.TrimSpace(pl.ExpirationDate); raw != "" {
		exp, err := time.Parse(dateLayout, raw)
		if err != nil {
			violations = append(violations, fmt.Sprintf("ExpirationDate %q is not a valid date (use YYYY-MM-DD).", raw))
		} else {
			p.ExpirationDate = &exp
		}
	}

	return p, violations
}

func payloadFrom(p catalog.Product) productPayload {
	pl := productPayload{
		ID:          p.ID,
		Description: p.Description,
		Brand:       p.Brand,
		Content:     p.Content,
		Category:    p.Category,
		Price:       p.Price,
		Status:      p.Status(),
		DateMade:    p.DateMade.Format(dateLayout),
	}
	if p.ExpirationDate != nil {
		pl.ExpirationDate = p.ExpirationDate.Format(dateLayout)
	}
	return pl
}

func payloadsFrom(products []catalog.Product) []productPayload {
	out := make([]productPayload, len(products))
	for i, p := range products {
		out[i] = payloadFrom(p)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payloadsFrom(products))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	scope := catalog.ParseScope(r.URL.Query().Get("scope"))

	products, err := s.service.Search(r.Context(), query, scope)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payloadsFrom(products))
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var pl productPayload
	if err := json.NewDecoder(r.Body).Decode(&pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, violations := pl.toProduct()
	if len(violations) > 0 {
		s.respondError(w, r, &catalog.ValidationError{Violations: violations})
		return
	}

	created, err := s.service.Add(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payloadFrom(created))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := s.service.Find(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, payloadFrom(*p))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var pl productPayload
	if err := json.NewDecoder(r.Body).Decode(&pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pl.ID = id

	p, violations := pl.toProduct()
	if len(violations) > 0 {
		s.respondError(w, r, &catalog.ValidationError{Violations: violations})
		return
	}

	updated, err := s.service.Update(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, payloadFrom(p))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := s.service.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products_export.csv"`)

	tw := &trackingWriter{w: w}
	count, err := s.service.Export(r.Context(), tw)
	if err != nil {
		if !tw.wrote {
			// Nothing committed yet; report the failure properly.
			w.Header().Del("Content-Disposition")
			s.respondError(w, r, err)
			return
		}
		// Mid-stream failure; the status line is already out.
		logging.FromContext(r.Context()).Error("export failed", "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("export served", "count", count)
}

// trackingWriter records whether any response bytes have been written,
// so export failures before the first byte can still change the status.
type trackingWriter struct {
	w     io.Writer
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.wrote = true
	}
	return t.w.Write(p)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	report, err := s.service.Import(ctx, csvio.NewScanner(file))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseID extracts the {id} route parameter. A non-numeric id is a
// client error, not a lookup miss.
func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid product id %q", raw))
		return 0, false
	}
	return id, true
}
