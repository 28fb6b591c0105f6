package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/aeroscore/internal/app"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
)

// ScoreDependencies covers score capture and the audit views.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, in validation.ScoreInput) (model.Score, error)
	DeleteScore(ctx context.Context, in validation.DeleteScoreInput) (int64, error)
	CompetitorScores(ctx context.Context, competitorID int64) (map[string]service.JudgeScore, error)
	AllScores(ctx context.Context) ([]model.Score, error)
}

// ScoresHandler handles score requests.
type ScoresHandler struct {
	deps ScoreDependencies
	*responder
}

type deletedResponse struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies, r *responder) *ScoresHandler {
	return &ScoresHandler{deps: deps, responder: r}
}

// Register attaches the score routes.
func (h *ScoresHandler) Register(r chi.Router) {
	r.Post("/scores", MetricsMiddleware(h.HandleSubmit, "scores"))
	r.Get("/scores", MetricsMiddleware(h.HandleList, "scores"))
	r.Delete("/scores", MetricsMiddleware(h.HandleDelete, "scores"))
	r.Get("/scores/{id}", MetricsMiddleware(h.HandleByCompetitor, "competitor_scores"))
}

// HandleSubmit handles POST /api/scores.
func (h *ScoresHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_score"
	var in validation.ScoreInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sc, err := h.deps.SubmitScore(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// HandleList handles GET /api/scores.
func (h *ScoresHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scores, err := h.deps.AllScores(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.list_scores", err))
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// HandleDelete handles DELETE /api/scores. A difficulty deletion clears the
// competitor's whole difficulty panel.
func (h *ScoresHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_score"
	var in validation.DeleteScoreInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	n, err := h.deps.DeleteScore(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Status: "deleted", Removed: n})
}

// HandleByCompetitor handles GET /api/scores/{id}.
func (h *ScoresHandler) HandleByCompetitor(w http.ResponseWriter, r *http.Request) {
	const op = "api.competitor_scores"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sheet, err := h.deps.CompetitorScores(r.Context(), id)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}
