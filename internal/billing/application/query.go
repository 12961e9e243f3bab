package application

import (
	"context"
	"fmt"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
)

// BillingQueryService 账单查询服务
type BillingQueryService struct {
	contracts   domain.ContractRepository
	schedule    domain.ScheduleRepository
	collections domain.CollectionSummaryRepository
}

// NewBillingQueryService 创建查询服务
func NewBillingQueryService(
	contracts domain.ContractRepository,
	schedule domain.ScheduleRepository,
	collections domain.CollectionSummaryRepository,
) *BillingQueryService {
	return &BillingQueryService{contracts: contracts, schedule: schedule, collections: collections}
}

// ContractWithSchedule 合同及其分期计划
type ContractWithSchedule struct {
	Contract *domain.Contract                    `json:"contract"`
	Schedule []*domain.CreditScheduleInstallment `json:"schedule"`
}

// GetContract 合同详情（含分期，按到期日升序）
func (s *BillingQueryService) GetContract(ctx context.Context, contractID string) (*ContractWithSchedule, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %s", domain.ErrNotFound, contractID)
	}
	rows, err := s.schedule.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return &ContractWithSchedule{Contract: contract, Schedule: rows}, nil
}

// GetCollections 合同回款读模型。事件投影尚未刷新时返回零值汇总。
func (s *BillingQueryService) GetCollections(ctx context.Context, contractID string) (*domain.CollectionSummary, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %s", domain.ErrNotFound, contractID)
	}
	summary, err := s.collections.GetByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = &domain.CollectionSummary{ContractID: contractID, TenantID: contract.TenantID}
	}
	return summary, nil
}
