package application

import (
	"context"
	"log/slog"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
)

// CollectionProjectionService 由 billing.payment.recorded 事件驱动，
// 从支付明细重算合同回款读模型。刷新是幂等的：总是整体重算后 Upsert。
type CollectionProjectionService struct {
	payments    domain.PaymentRepository
	collections domain.CollectionSummaryRepository
	logger      *slog.Logger
}

// NewCollectionProjectionService 创建投影服务
func NewCollectionProjectionService(
	payments domain.PaymentRepository,
	collections domain.CollectionSummaryRepository,
	logger *slog.Logger,
) *CollectionProjectionService {
	return &CollectionProjectionService{payments: payments, collections: collections, logger: logger}
}

// Refresh 重算某合同的回款汇总
func (s *CollectionProjectionService) Refresh(ctx context.Context, contractID, tenantID string) error {
	total, count, last, err := s.payments.SumByContract(ctx, contractID)
	if err != nil {
		return err
	}
	summary := &domain.CollectionSummary{
		ContractID:     contractID,
		TotalCollected: total,
		PaymentCount:   count,
		TenantID:       tenantID,
	}
	if last != nil {
		ts := last.Unix()
		summary.LastPaymentAt = &ts
	}
	if err := s.collections.Upsert(ctx, summary); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "collection summary refreshed", "contract_id", contractID, "total", total.String())
	return nil
}
