package controllers

import (
	"context"
	"net/http"
	"time"

	"sauvage-server/models"
	"sauvage-server/utils"
)

type StatsStore interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
	OrderStats(ctx context.Context) ([]models.CategoryStat, error)
}

// AdminController serves the dashboard analytics (Admin only)
type AdminController struct {
	Stats   StatsStore
	Timeout time.Duration
}

func NewAdminController(stats StatsStore, timeout time.Duration) *AdminController {
	return &AdminController{Stats: stats, Timeout: timeout}
}

// AdminStates returns revenue and collection counts
func (ac *AdminController) AdminStates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, ac.Timeout)
	defer cancel()

	stats, err := ac.Stats.AdminStats(ctx)
	if err != nil {
		serverError(w, r, "admin stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// OrderStats returns ordered item counts and totals per menu category
func (ac *AdminController) OrderStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, ac.Timeout)
	defer cancel()

	stats, err := ac.Stats.OrderStats(ctx)
	if err != nil {
		serverError(w, r, "order stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
