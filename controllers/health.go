package controllers

import (
	"context"
	"net/http"
	"time"

	"sauvage-server/utils"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes
type HealthController struct {
	Store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{Store: store}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Timestamp time.Time `json:"timestamp"`
}

// Root is the liveness probe; it never touches the store
func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("sauvage is serving"))
}

// Health reports store reachability; the server keeps serving either way
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{Status: "ok", Store: "up", Timestamp: time.Now().UTC()}
	if err := hc.Store.Ping(ctx); err != nil {
		response.Status = "degraded"
		response.Store = "down"
	}
	utils.WriteJSON(w, http.StatusOK, response)
}
