package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/genedata/internal/apperr"
	"github.com/starford/genedata/internal/codec"
	"github.com/starford/genedata/internal/proteinservice"
)

// maxReportBody caps the command stream accepted by POST /api/report.
const maxReportBody = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *proteinservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *proteinservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Catalog handles GET /api/catalog.
//
//	@Summary		Describe the active catalog
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	CatalogResponse
//	@Security		BearerAuth
//	@Router			/catalog [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog(r.Context()))
}

// GetRecord handles GET /api/records/{name}.
//
//	@Summary		Get the first record with a name
//	@Tags			catalog
//	@Produce		json
//	@Param			name	path		string	true	"Protein name"
//	@Success		200		{object}	RecordResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{name} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := h.svc.GetRecord(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get record failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	// Catalog formulas are validated at load time.
	decoded, _ := codec.Decode(rec.Formula)
	writeJSON(w, http.StatusOK, RecordResponse{
		Name:    rec.Name,
		Origin:  rec.Origin,
		Formula: rec.Formula,
		Decoded: decoded,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Find the first record containing a decoded pattern
//	@Tags			queries
//	@Produce		json
//	@Param			pattern	query		string	true	"Compact pattern"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("pattern") {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'pattern' is required"))
		return
	}
	pattern := q.Get("pattern")
	res, err := h.svc.Search(r.Context(), pattern)
	if err != nil {
		if errors.Is(err, apperr.ErrMalformedSequence) {
			writeJSON(w, http.StatusBadRequest, errorBody("malformed sequence"))
		} else {
			slog.Error("search failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Diff handles GET /api/diff.
//
//	@Summary		Count amino-acid differences between two records
//	@Tags			queries
//	@Produce		json
//	@Param			a	query		string	true	"First protein name"
//	@Param			b	query		string	true	"Second protein name"
//	@Success		200	{object}	DiffResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/diff [get]
func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'a' and 'b' are required"))
		return
	}
	res, err := h.svc.Diff(r.Context(), a, b)
	if err != nil {
		slog.Error("diff failed", slog.String("a", a), slog.String("b", b), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Mode handles GET /api/mode.
//
//	@Summary		Most frequent amino acid of a record
//	@Tags			queries
//	@Produce		json
//	@Param			name	query		string	true	"Protein name"
//	@Success		200		{object}	ModeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/mode [get]
func (h *Handler) Mode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	res, err := h.svc.Mode(r.Context(), name)
	if err != nil {
		slog.Error("mode failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Report handles POST /api/report. The body is a command stream; the
// response is the plain-text report.
//
//	@Summary		Render a report for a command stream
//	@Tags			queries
//	@Accept			plain
//	@Produce		plain
//	@Success		200	{string}	string
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report [post]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReportBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	res, err := h.svc.Report(r.Context(), bytes.NewReader(body))
	if err != nil {
		slog.Error("report failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeText(w, http.StatusOK, res.Text)
}
