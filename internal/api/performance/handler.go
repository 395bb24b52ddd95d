// Package performance provides REST API handlers for performance rankings.
package performance

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/service/ranking"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// RankingService interface for ranking operations.
type RankingService interface {
	LivePerformance(ctx context.Context, query ranking.LiveQuery) (*ranking.LiveResult, error)
	ComputeMonth(ctx context.Context, month string) ([]models.PerformanceRecord, error)
	AvailableMonths(ctx context.Context) ([]string, error)
	Historical(ctx context.Context, page, pageSize int) (*ranking.HistoricalResult, error)
}

// Handler handles performance API requests.
type Handler struct {
	ranking RankingService
	log     *logger.Logger
}

// NewHandler creates a new performance handler.
func NewHandler(rankingService *ranking.Service, log *logger.Logger) *Handler {
	return &Handler{ranking: rankingService, log: log}
}

// NewHandlerWithInterfaces creates a new performance handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(rankingService RankingService, log *logger.Logger) *Handler {
	return &Handler{ranking: rankingService, log: log}
}

// GetPerformance returns the live ranking for a month or date range.
// GET /api/v1/performance?month=2026-01&page=1&page_size=10
// GET /api/v1/performance?start_date=2026-01-01&end_date=2026-01-15.
func (h *Handler) GetPerformance(c *gin.Context) {
	query := ranking.LiveQuery{
		Month:     c.Query("month"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 10),
	}

	result, err := h.ranking.LivePerformance(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, ranking.ErrInvalidMonth), errors.Is(err, ranking.ErrInvalidDateRange):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to compute live performance")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve performance data")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         result,
		"generated_at": time.Now().UTC(),
	})
}

type calculateRequest struct {
	Month string `json:"month" binding:"required"`
}

// Calculate recomputes and persists a monthly snapshot. Privileged; the admin
// middleware guards the route.
// POST /api/v1/performance/calculate.
func (h *Handler) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "month is required (YYYY-MM)")
		return
	}

	records, err := h.ranking.ComputeMonth(c.Request.Context(), req.Month)
	if err != nil {
		switch {
		case errors.Is(err, ranking.ErrInvalidMonth):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Str("month", req.Month).Msg("Failed to compute month")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to compute monthly performance")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":   req.Month,
		"count":   len(records),
		"results": records,
	})
}

// GetAvailableMonths lists months with persisted snapshots.
// GET /api/v1/performance/months.
func (h *Handler) GetAvailableMonths(c *gin.Context) {
	months, err := h.ranking.AvailableMonths(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list available months")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve available months")
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": months})
}

// GetHistorical lists persisted snapshots across all months.
// GET /api/v1/performance/history?page=1&page_size=10.
func (h *Handler) GetHistorical(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 10)

	result, err := h.ranking.Historical(c.Request.Context(), page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list historical performance")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve historical performance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return fallback
	}
	return val
}

func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
