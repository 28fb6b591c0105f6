package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/aeroscore/internal/app"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
)

// CompetitorDependencies covers registration and validation of competitors.
type CompetitorDependencies interface {
	CreateCompetitor(ctx context.Context, in validation.CompetitorInput) (model.Competitor, error)
	DeleteCompetitor(ctx context.Context, id int64) error
	ListCompetitors(ctx context.Context) ([]model.Competitor, error)
	CategoryCompetitors(ctx context.Context, category string) ([]service.CompetitorSheet, error)
	CountCompetitors(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)
	ValidateCompetitor(ctx context.Context, competitorID int64, in validation.ValidateInput) (float64, error)
	UnvalidateCompetitor(ctx context.Context, competitorID int64) error
}

// CompetitorsHandler handles competitor requests.
type CompetitorsHandler struct {
	deps CompetitorDependencies
	*responder
}

type validatedResponse struct {
	CompetitorID int64   `json:"competitor_id"`
	TotalScore   float64 `json:"total_score"`
}

// NewCompetitorsHandler creates a new competitors handler.
func NewCompetitorsHandler(deps CompetitorDependencies, r *responder) *CompetitorsHandler {
	return &CompetitorsHandler{deps: deps, responder: r}
}

// Register attaches the competitor routes.
func (h *CompetitorsHandler) Register(r chi.Router) {
	r.Get("/competitors", MetricsMiddleware(h.HandleList, "competitors"))
	r.Post("/competitors", MetricsMiddleware(h.HandleCreate, "competitors"))
	r.Get("/competitors/count", MetricsMiddleware(h.HandleCount, "competitors_count"))
	r.Get("/competitors/categories/count", MetricsMiddleware(h.HandleCountCategories, "categories_count"))
	r.Get("/competitors/by-category", MetricsMiddleware(h.HandleByCategory, "competitors_by_category"))
	r.Delete("/competitors/{id}", MetricsMiddleware(h.HandleDelete, "competitor"))
	r.Post("/scores/{id}/validate", MetricsMiddleware(h.HandleValidate, "validate"))
	r.Delete("/scores/{id}/unvalidate", MetricsMiddleware(h.HandleUnvalidate, "unvalidate"))
}

// HandleList handles GET /api/competitors.
func (h *CompetitorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_competitors"
	list, err := h.deps.ListCompetitors(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/competitors.
func (h *CompetitorsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_competitor"
	var in validation.CompetitorInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.CreateCompetitor(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleDelete handles DELETE /api/competitors/{id}.
func (h *CompetitorsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_competitor"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DeleteCompetitor(r.Context(), id); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// HandleByCategory handles GET /api/competitors/by-category?category=...
func (h *CompetitorsHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.competitors_by_category"
	category := r.URL.Query().Get("category")
	if category == "" {
		h.fail(w, r, WrapKind(op, ErrBadRequest, errCategoryRequired))
		return
	}
	sheets, err := h.deps.CategoryCompetitors(r.Context(), category)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sheets)
}

// HandleCount handles GET /api/competitors/count.
func (h *CompetitorsHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.CountCompetitors(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.count_competitors", err))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// HandleCountCategories handles GET /api/competitors/categories/count.
func (h *CompetitorsHandler) HandleCountCategories(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.CountCategories(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.count_categories", err))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// HandleValidate handles POST /api/scores/{id}/validate.
func (h *CompetitorsHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_competitor"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	var in validation.ValidateInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	total, err := h.deps.ValidateCompetitor(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, validatedResponse{CompetitorID: id, TotalScore: total})
}

// HandleUnvalidate handles DELETE /api/scores/{id}/unvalidate.
func (h *CompetitorsHandler) HandleUnvalidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.unvalidate_competitor"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.UnvalidateCompetitor(r.Context(), id); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "unvalidated"})
}
