package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/aeroscore/internal/app"
	"github.com/okian/aeroscore/internal/validation"
)

// LiveDependencies covers the open vote and the display screen.
type LiveDependencies interface {
	StartVote(ctx context.Context, in validation.CompetitorRef) error
	StopVote(ctx context.Context) error
	CurrentVote(ctx context.Context, judgeID int64) (service.Vote, error)
	ShowCompetitor(ctx context.Context, in validation.CompetitorRef) error
	ActiveShow(ctx context.Context) (service.Show, error)
	ClearShow(ctx context.Context) error
	ShowState(ctx context.Context) (service.ShowState, error)
}

// LiveHandler handles vote and show requests.
type LiveHandler struct {
	deps LiveDependencies
	*responder
}

// NewLiveHandler creates a new live state handler.
func NewLiveHandler(deps LiveDependencies, r *responder) *LiveHandler {
	return &LiveHandler{deps: deps, responder: r}
}

// Register attaches the vote and show routes.
func (h *LiveHandler) Register(r chi.Router) {
	r.Post("/votes/start", MetricsMiddleware(h.HandleStartVote, "votes_start"))
	r.Post("/votes/stop", MetricsMiddleware(h.HandleStopVote, "votes_stop"))
	r.Get("/votes/current", MetricsMiddleware(h.HandleCurrentVote, "votes_current"))
	r.Get("/show/state", MetricsMiddleware(h.HandleShowState, "show_state"))
	r.Get("/live", MetricsMiddleware(h.HandleActiveShow, "live"))
	r.Post("/live/{id}", MetricsMiddleware(h.HandleStartShow, "live"))
	r.Delete("/live", MetricsMiddleware(h.HandleStopShow, "live"))
}

// HandleStartVote handles POST /api/votes/start.
func (h *LiveHandler) HandleStartVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_vote"
	var in validation.CompetitorRef
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.StartVote(r.Context(), in); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "started"})
}

// HandleStopVote handles POST /api/votes/stop.
func (h *LiveHandler) HandleStopVote(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.StopVote(r.Context()); err != nil {
		h.fail(w, r, Wrap("api.stop_vote", err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
}

// HandleCurrentVote handles GET /api/votes/current?judge_id=N.
func (h *LiveHandler) HandleCurrentVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.current_vote"
	var judgeID int64
	if raw := r.URL.Query().Get("judge_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.fail(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid judge_id %q", raw)))
			return
		}
		judgeID = id
	}
	vote, err := h.deps.CurrentVote(r.Context(), judgeID)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

// HandleShowState handles GET /api/show/state.
func (h *LiveHandler) HandleShowState(w http.ResponseWriter, r *http.Request) {
	state, err := h.deps.ShowState(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.show_state", err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleActiveShow handles GET /api/live.
func (h *LiveHandler) HandleActiveShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.deps.ActiveShow(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.active_show", err))
		return
	}
	writeJSON(w, http.StatusOK, show)
}

// HandleStartShow handles POST /api/live/{id}.
func (h *LiveHandler) HandleStartShow(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_show"
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.ShowCompetitor(r.Context(), validation.CompetitorRef{CompetitorID: id}); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "showing"})
}

// HandleStopShow handles DELETE /api/live.
func (h *LiveHandler) HandleStopShow(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearShow(r.Context()); err != nil {
		h.fail(w, r, Wrap("api.stop_show", err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "cleared"})
}
