// Package http 账单核心 HTTP 接口层
package http

import (
	"errors"
	"net/http"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/application"
	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// BillingHandler 账单核心 HTTP 处理器
type BillingHandler struct {
	payments  *application.PaymentService
	contracts *application.ContractService
	queries   *application.BillingQueryService
}

// NewBillingHandler 创建 HTTP 处理器
func NewBillingHandler(
	payments *application.PaymentService,
	contracts *application.ContractService,
	queries *application.BillingQueryService,
) *BillingHandler {
	return &BillingHandler{payments: payments, contracts: contracts, queries: queries}
}

// RegisterRoutes 注册路由
func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments", h.AllocatePayment)
	r.POST("/contracts", h.GenerateContract)
	r.GET("/contracts/:id", h.GetContract)
	r.GET("/billing/contracts/:id/collections", h.GetCollections)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoTarget),
		errors.Is(err, domain.ErrInvoiceClosed),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrQuoteAlreadyConverted),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AllocatePaymentRequest 收款请求。contract_id / invoice_id 至少一个。
type AllocatePaymentRequest struct {
	ContractID string          `json:"contract_id"`
	InvoiceID  *uint           `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Method     string          `json:"method" binding:"required"`
	Notes      string          `json:"notes"`
}

// AllocatePayment 收款
func (h *BillingHandler) AllocatePayment(c *gin.Context) {
	var req AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if !req.Amount.IsPositive() {
		response.ErrorWithStatus(c, http.StatusBadRequest, "amount must be positive", "")
		return
	}

	payment, err := h.payments.Allocate(c.Request.Context(), application.AllocatePaymentCommand{
		ContractID: req.ContractID,
		InvoiceID:  req.InvoiceID,
		Amount:     req.Amount,
		Method:     domain.PaymentMethod(req.Method),
		Notes:      req.Notes,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to allocate payment", "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, payment)
}

// GenerateContractRequest 报价单转合同
type GenerateContractRequest struct {
	QuoteID       string `json:"quote_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Installments  int    `json:"installments"`
	WithInvoice   bool   `json:"with_invoice"`
}

// GenerateContract 报价单转合同
func (h *BillingHandler) GenerateContract(c *gin.Context) {
	var req GenerateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	contract, err := h.contracts.Generate(c.Request.Context(), application.GenerateContractCommand{
		QuoteID:       req.QuoteID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Installments:  req.Installments,
		WithInvoice:   req.WithInvoice,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to generate contract", "quote_id", req.QuoteID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, contract)
}

// GetContract 合同详情（含分期计划）
func (h *BillingHandler) GetContract(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "id is required", "")
		return
	}
	result, err := h.queries.GetContract(c.Request.Context(), id)
	if err != nil {
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, result)
}

// GetCollections 合同回款汇总（读模型）
func (h *BillingHandler) GetCollections(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "id is required", "")
		return
	}
	summary, err := h.queries.GetCollections(c.Request.Context(), id)
	if err != nil {
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, summary)
}
