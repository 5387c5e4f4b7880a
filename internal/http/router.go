package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/f1-data-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /api/teams", handler.ListTeams)
	mux.HandleFunc("POST /api/teams", handler.CreateTeam)
	mux.HandleFunc("PUT /api/teams/{team}", handler.UpdateTeam)
	mux.HandleFunc("DELETE /api/teams/{team}", handler.DeleteTeam)
	mux.HandleFunc("PATCH /api/teams/{team}/drivers/{driver}", handler.PatchDriver)
	mux.HandleFunc("/", handler.NotFound)
	return mux
}
