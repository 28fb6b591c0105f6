package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/aeroscore/internal/adapters/export"
	"github.com/okian/aeroscore/internal/domain/model"
)

// RankingDependencies covers the ranking reads.
type RankingDependencies interface {
	Rankings(ctx context.Context) (map[string][]model.RankedEntry, error)
	ExtendedRankings(ctx context.Context) (map[string][]model.ExtendedEntry, error)
	CategoryRanking(ctx context.Context, category string) ([]model.RankedEntry, error)
	ExportRankings(ctx context.Context, w io.Writer) error
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps RankingDependencies
	*responder
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies, r *responder) *RankingsHandler {
	return &RankingsHandler{deps: deps, responder: r}
}

// Register attaches the ranking routes. Static segments win over {category}.
func (h *RankingsHandler) Register(r chi.Router) {
	r.Get("/rankings", MetricsMiddleware(h.HandleRankings, "rankings"))
	r.Get("/rankings/extended", MetricsMiddleware(h.HandleExtended, "rankings_extended"))
	r.Get("/rankings/export.xlsx", MetricsMiddleware(h.HandleExport, "rankings_export"))
	r.Get("/rankings/{category}", MetricsMiddleware(h.HandleCategory, "rankings_category"))
}

// HandleRankings handles GET /api/rankings.
func (h *RankingsHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings"
	rankings, err := h.deps.Rankings(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if len(rankings) == 0 {
		h.fail(w, r, WrapKind(op, ErrNotFound, errNoRankings))
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

// HandleExtended handles GET /api/rankings/extended.
func (h *RankingsHandler) HandleExtended(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings_extended"
	rankings, err := h.deps.ExtendedRankings(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if len(rankings) == 0 {
		h.fail(w, r, WrapKind(op, ErrNotFound, errNoRankings))
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

// HandleCategory handles GET /api/rankings/{category}.
func (h *RankingsHandler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.CategoryRanking(r.Context(), pathText(r, "category"))
	if err != nil {
		h.fail(w, r, Wrap("api.rankings_category", err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleExport handles GET /api/rankings/export.xlsx. The workbook is
// buffered so a failure can still be reported as JSON.
func (h *RankingsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.deps.ExportRankings(r.Context(), &buf); err != nil {
		h.fail(w, r, Wrap("api.rankings_export", err))
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
