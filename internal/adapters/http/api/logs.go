package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
)

// LogDependencies covers the activity log.
type LogDependencies interface {
	AppendLog(ctx context.Context, in validation.LogInput) (model.LogEntry, error)
	Logs(ctx context.Context) []model.LogEntry
	LogUsage() (retained, capacity int)
}

// Activity log usage headers on GET /api/logs.
const (
	LogRetainedHeader = "X-Log-Retained"
	LogCapacityHeader = "X-Log-Capacity"
)

// LogsHandler handles activity log requests.
type LogsHandler struct {
	deps LogDependencies
	*responder
}

// NewLogsHandler creates a new activity log handler.
func NewLogsHandler(deps LogDependencies, r *responder) *LogsHandler {
	return &LogsHandler{deps: deps, responder: r}
}

// Register attaches the log routes.
func (h *LogsHandler) Register(r chi.Router) {
	r.Post("/logs", MetricsMiddleware(h.HandleAppend, "logs"))
	r.Get("/logs", MetricsMiddleware(h.HandleList, "logs"))
}

// HandleAppend handles POST /api/logs.
func (h *LogsHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	const op = "api.append_log"
	var in validation.LogInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := h.deps.AppendLog(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleList handles GET /api/logs. Older entries beyond the capacity
// header have been dropped.
func (h *LogsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries := h.deps.Logs(r.Context())
	retained, capacity := h.deps.LogUsage()
	w.Header().Set(LogRetainedHeader, strconv.Itoa(retained))
	w.Header().Set(LogCapacityHeader, strconv.Itoa(capacity))
	writeJSON(w, http.StatusOK, entries)
}
