package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
)

// JudgeDependencies covers the judging panel.
type JudgeDependencies interface {
	ListJudges(ctx context.Context) ([]model.Judge, error)
	CreateJudge(ctx context.Context, in validation.JudgeInput) (model.Judge, error)
	LoginJudge(ctx context.Context, judgeID int64, in validation.JudgeLoginInput) (model.Judge, error)
	JudgeScores(ctx context.Context, judgeID int64) ([]model.Score, error)
}

// JudgesHandler handles judge requests.
type JudgesHandler struct {
	deps JudgeDependencies
	*responder
}

// NewJudgesHandler creates a new judges handler.
func NewJudgesHandler(deps JudgeDependencies, r *responder) *JudgesHandler {
	return &JudgesHandler{deps: deps, responder: r}
}

// Register attaches the judge routes.
func (h *JudgesHandler) Register(r chi.Router) {
	r.Get("/judges", MetricsMiddleware(h.HandleList, "judges"))
	r.Post("/judges", MetricsMiddleware(h.HandleCreate, "judges"))
	r.Put("/judges/{id}/login", MetricsMiddleware(h.HandleLogin, "judge_login"))
	r.Get("/judges/{id}/scores", MetricsMiddleware(h.HandleScores, "judge_scores"))
}

// HandleList handles GET /api/judges.
func (h *JudgesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	judges, err := h.deps.ListJudges(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.list_judges", err))
		return
	}
	writeJSON(w, http.StatusOK, judges)
}

// HandleCreate handles POST /api/judges.
func (h *JudgesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_judge"
	var in validation.JudgeInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	j, err := h.deps.CreateJudge(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

// HandleLogin handles PUT /api/judges/{id}/login.
func (h *JudgesHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.judge_login"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	var in validation.JudgeLoginInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	j, err := h.deps.LoginJudge(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// HandleScores handles GET /api/judges/{id}/scores.
func (h *JudgesHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.judge_scores"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	scores, err := h.deps.JudgeScores(r.Context(), id)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
