// Package codes provides REST API handlers for invitation code issuance and
// redemption.
package codes

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/internal/service/invites"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// InviteService interface for code issuance and redemption operations.
type InviteService interface {
	Issue(ctx context.Context, employeeID, generatorID string) (*models.InvitationCode, error)
	Redeem(ctx context.Context, code, redeemerID string) (*invites.RedemptionResult, error)
	History(ctx context.Context, filter repository.CodeFilter, page, pageSize int) ([]models.InvitationCode, int64, error)
}

// Handler handles invitation code API requests.
type Handler struct {
	invites InviteService
	log     *logger.Logger
}

// NewHandler creates a new codes handler.
func NewHandler(inviteService *invites.Service, log *logger.Logger) *Handler {
	return &Handler{invites: inviteService, log: log}
}

// NewHandlerWithInterfaces creates a new codes handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(inviteService InviteService, log *logger.Logger) *Handler {
	return &Handler{invites: inviteService, log: log}
}

type generateRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

// Generate issues a new invitation code.
// POST /api/v1/codes.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "employee_id is required")
		return
	}

	code, err := h.invites.Issue(c.Request.Context(), req.EmployeeID, operator(c))
	if err != nil {
		switch {
		case errors.Is(err, invites.ErrInvalidEmployeeID):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, invites.ErrGenerationExhausted):
			h.errorResponse(c, http.StatusServiceUnavailable, err.Error())
		default:
			h.log.Error().Err(err).Str("employee_id", req.EmployeeID).Msg("Failed to issue code")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to issue invitation code")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":         code.Code,
		"employee_id":  code.EmployeeID,
		"generator_id": code.GeneratorID,
		"generated_at": code.GeneratedAt,
	})
}

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// Redeem marks an invitation code as used.
// POST /api/v1/codes/redeem.
func (h *Handler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.invites.Redeem(c.Request.Context(), req.Code, operator(c))
	if err != nil {
		switch {
		case errors.Is(err, invites.ErrInvalidCodeFormat):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, invites.ErrCodeNotFound):
			h.errorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, invites.ErrAlreadyRedeemed):
			h.errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, invites.ErrCodeExpired):
			h.errorResponse(c, http.StatusGone, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to redeem code")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to redeem invitation code")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "invitation code redeemed",
		"data":    result,
	})
}

// History lists issued codes.
// GET /api/v1/codes?employee_id=0042&status=used&page=1&page_size=10.
func (h *Handler) History(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 10)

	filter := repository.CodeFilter{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
	}

	codes, total, err := h.invites.History(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list codes")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to list invitation codes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list":      codes,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// operator identifies the acting user. Authentication proper lives in front of
// this service; the gateway forwards the identity in a header.
func operator(c *gin.Context) string {
	if op := c.GetHeader("X-Operator"); op != "" {
		return op
	}
	return "system"
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
