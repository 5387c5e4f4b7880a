package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/f1-data-service/internal/dispatch"
	"github.com/preston-bernstein/f1-data-service/internal/request"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

const (
	msgBodyRequired = "request body is required"
	msgBodyTooLarge = "request body too large"
)

// Executor runs one operation against the teams store.
type Executor interface {
	Execute(ctx context.Context, op dispatch.Operation, req request.Document) dispatch.Result
}

// Handler exposes the dispatcher operations as REST routes.
type Handler struct {
	exec         Executor
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewHandler constructs a Handler with defaults.
func NewHandler(exec Executor, logger *slog.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		exec:         exec,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// NotFound answers every unrouted path.
func (h *Handler) NotFound(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
}

// ListTeams returns the whole teams document.
func (h *Handler) ListTeams(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.execute(w, r, dispatch.OpGet, request.Document{}, nethttp.StatusOK)
}

// CreateTeam appends the team in the body.
func (h *Handler) CreateTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	req, ok := h.decode(w, r, "", "")
	if !ok {
		return
	}
	h.execute(w, r, dispatch.OpCreate, req, nethttp.StatusCreated)
}

// UpdateTeam replaces the first team named in the path.
func (h *Handler) UpdateTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	req, ok := h.decode(w, r, r.PathValue("team"), "")
	if !ok {
		return
	}
	h.execute(w, r, dispatch.OpUpdate, req, nethttp.StatusOK)
}

// DeleteTeam removes the first team named in the path.
func (h *Handler) DeleteTeam(w nethttp.ResponseWriter, r *nethttp.Request) {
	req := request.Document{Team: r.PathValue("team")}
	h.execute(w, r, dispatch.OpDelete, req, nethttp.StatusOK)
}

// PatchDriver merges the body into a driver of the named team.
func (h *Handler) PatchDriver(w nethttp.ResponseWriter, r *nethttp.Request) {
	req, ok := h.decode(w, r, r.PathValue("team"), r.PathValue("driver"))
	if !ok {
		return
	}
	h.execute(w, r, dispatch.OpPatch, req, nethttp.StatusOK)
}

func (h *Handler) decode(w nethttp.ResponseWriter, r *nethttp.Request, team, driver string) (request.Document, bool) {
	body, err := io.ReadAll(nethttp.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *nethttp.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, nethttp.StatusRequestEntityTooLarge, msgBodyTooLarge, h.logger)
			return request.Document{}, false
		}
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return request.Document{}, false
	}
	if len(body) == 0 {
		writeError(w, r, nethttp.StatusBadRequest, msgBodyRequired, h.logger)
		return request.Document{}, false
	}
	req, err := request.New(team, driver, body)
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return request.Document{}, false
	}
	return req, true
}

func (h *Handler) execute(w nethttp.ResponseWriter, r *nethttp.Request, op dispatch.Operation, req request.Document, success int) {
	res := h.exec.Execute(r.Context(), op, req)
	if res.OK() {
		writeRaw(w, success, res.Body, h.logger)
		return
	}

	writeError(w, r, statusFor(res.Err.Kind), res.Err.Message, loggerFromContext(r, h.logger))
}

func statusFor(kind dispatch.Kind) int {
	switch kind {
	case dispatch.KindNotFound:
		return nethttp.StatusNotFound
	case dispatch.KindUsage, dispatch.KindInput:
		return nethttp.StatusBadRequest
	default:
		return nethttp.StatusInternalServerError
	}
}
