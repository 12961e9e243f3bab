// Package consumer 支付事件投影消费者
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/application"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
)

// PaymentProjectionHandler 消费 billing.payment.recorded，刷新合同回款读模型
type PaymentProjectionHandler struct {
	projector *application.CollectionProjectionService
	logger    *slog.Logger
}

// NewPaymentProjectionHandler 创建投影消费者
func NewPaymentProjectionHandler(projector *application.CollectionProjectionService, logger *slog.Logger) *PaymentProjectionHandler {
	return &PaymentProjectionHandler{projector: projector, logger: logger}
}

// HandlePaymentRecorded 处理单条支付事件
func (h *PaymentProjectionHandler) HandlePaymentRecorded(ctx context.Context, msg kafkago.Message) error {
	var event struct {
		PaymentID  string `json:"payment_id"`
		ContractID string `json:"contract_id"`
		TenantID   string `json:"tenant_id"`
	}
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal payment event", "error", err)
		return err
	}
	if event.ContractID == "" {
		// 纯发票收款不挂合同，无投影可刷
		return nil
	}
	return h.projector.Refresh(ctx, event.ContractID, event.TenantID)
}

// Subscribe 挂到消费者上开始消费
func (h *PaymentProjectionHandler) Subscribe(ctx context.Context, consumer *kafka.Consumer) {
	consumer.Start(ctx, 1, h.HandlePaymentRecorded)
}
