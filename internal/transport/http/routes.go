package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"solo-trivia/internal/app"
	"solo-trivia/internal/domain"
	"solo-trivia/internal/logging"
)

// NewRouter mounts the health check, the websocket and the read-only game
// endpoints.
func NewRouter(service *app.GameService, defaultSet string, logger *zap.Logger) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	ws := NewWSHandler(service, defaultSet, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", handleSnapshot(service))
		r.Get("/results", handleResults(service))
	})
	return r
}

func handleSnapshot(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := service.Snapshot(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleResults(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := service.Results(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
