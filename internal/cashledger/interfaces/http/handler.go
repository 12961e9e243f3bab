// Package http 现金台账 HTTP 接口层
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/application"
	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

const dateFormat = "2006-01-02"

// CashHandler 现金台账 HTTP 处理器
type CashHandler struct {
	service *application.CashLedgerService
}

// NewCashHandler 创建 HTTP 处理器
func NewCashHandler(service *application.CashLedgerService) *CashHandler {
	return &CashHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *CashHandler) RegisterRoutes(r *gin.RouterGroup) {
	cash := r.Group("/cash")
	{
		cash.POST("/movements", h.RecordMovement)
		cash.GET("/movements", h.ListMovements)
		cash.GET("/summary", h.Summary)
		cash.GET("/status", h.Status)
		cash.POST("/open", h.Open)
		cash.POST("/close", h.Close)
		cash.GET("/history", h.History)
	}
}

func (h *CashHandler) statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAlreadyOpen),
		errors.Is(err, domain.ErrNotOpen),
		errors.Is(err, domain.ErrInvalidMovementType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// queryDate 解析 ?date=YYYY-MM-DD，缺省为今天
func queryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), true
	}
	date, err := time.Parse(dateFormat, raw)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", "")
		return time.Time{}, false
	}
	return date, true
}

// RecordMovementRequest 记一笔流水
type RecordMovementRequest struct {
	Type          string          `json:"type" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	PaymentMethod string          `json:"payment_method"`
	ReferenceID   string          `json:"reference_id"`
	Source        string          `json:"source"`
	UserID        string          `json:"user_id"`
}

// RecordMovement 记一笔流水
func (h *CashHandler) RecordMovement(c *gin.Context) {
	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	m, err := h.service.RecordMovement(c.Request.Context(), application.RecordMovementCommand{
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		ReferenceID:   req.ReferenceID,
		Source:        req.Source,
		UserID:        req.UserID,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to record movement", "error", err)
		response.ErrorWithStatus(c, h.statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, m)
}

// ListMovements 某日流水
func (h *CashHandler) ListMovements(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	movs, err := h.service.MovementsByDate(c.Request.Context(), date)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list movements", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, movs)
}

// Summary 某日收支汇总
func (h *CashHandler) Summary(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), date)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to summarize day", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, summary)
}

// Status 某日钱箱状态
func (h *CashHandler) Status(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), date)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to derive status", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, status)
}

// OpenRequest 开箱
type OpenRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" binding:"required"`
	UserID        string          `json:"user_id"`
}

// Open 开箱
func (h *CashHandler) Open(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	m, err := h.service.Open(c.Request.Context(), req.InitialAmount, req.UserID)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to open register", "error", err)
		response.ErrorWithStatus(c, h.statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, m)
}

// Close 收箱
func (h *CashHandler) Close(c *gin.Context) {
	m, err := h.service.Close(c.Request.Context())
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to close register", "error", err)
		response.ErrorWithStatus(c, h.statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, m)
}

// History 最近 7 个有动静的日子
func (h *CashHandler) History(c *gin.Context) {
	reports, err := h.service.History(c.Request.Context(), 7)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to build history", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, reports)
}
