package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every API route on a fresh router.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoveryMiddleware(h.Log))

	router.HandleFunc("/api/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/api/signup", h.signup).Methods(http.MethodPost)
	router.HandleFunc("/api/account/update", h.updateAccount).Methods(http.MethodPost)
	router.HandleFunc("/api/account/delete", h.deleteAccount).Methods(http.MethodPost)

	router.HandleFunc("/api/stats/{username}", h.stats).Methods(http.MethodGet)
	router.HandleFunc("/api/refresh/{username}", h.refresh).Methods(http.MethodPost)
	router.HandleFunc("/api/leaderboard", h.leaderboard).Methods(http.MethodGet)

	router.HandleFunc("/api/cron/update", h.cronUpdate).Methods(http.MethodGet, http.MethodPost)

	return router
}
