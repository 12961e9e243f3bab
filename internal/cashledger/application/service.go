// Package application 现金台账应用层
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	"github.com/cmendieta2311/odonto-app-sub000/internal/shared/tenantctx"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"
)

const dayFormat = "2006-01-02"

// CashLedgerService 现金台账服务
type CashLedgerService struct {
	movements domain.MovementRepository
	cache     domain.SummaryCache
	publisher domain.EventPublisher
	txm       domain.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewCashLedgerService 创建现金台账服务
func NewCashLedgerService(
	movements domain.MovementRepository,
	cache domain.SummaryCache,
	publisher domain.EventPublisher,
	txm domain.TransactionManager,
	logger *slog.Logger,
) *CashLedgerService {
	return &CashLedgerService{
		movements: movements,
		cache:     cache,
		publisher: publisher,
		txm:       txm,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordMovementCommand 手工记一笔流水
type RecordMovementCommand struct {
	Type          string
	Amount        decimal.Decimal
	Description   string
	PaymentMethod string
	ReferenceID   string
	Source        string
	UserID        string
}

// RecordMovement 追加一笔 INCOME/EXPENSE 流水。无其他副作用。
func (s *CashLedgerService) RecordMovement(ctx context.Context, cmd RecordMovementCommand) (*domain.CashMovement, error) {
	movType, err := domain.ParseMovementType(cmd.Type)
	if err != nil {
		return nil, err
	}
	m := &domain.CashMovement{
		MovementID:    fmt.Sprintf("MOV-%d", idgen.GenID()),
		Date:          s.now().UTC(),
		Type:          movType,
		Amount:        cmd.Amount,
		Description:   cmd.Description,
		PaymentMethod: cmd.PaymentMethod,
		ReferenceID:   cmd.ReferenceID,
		Source:        cmd.Source,
		TenantID:      tenantctx.Tenant(ctx),
		UserID:        cmd.UserID,
	}
	if err := s.append(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// append 单笔插入 + 同事务发布集成事件，并失效当日缓存
func (s *CashLedgerService) append(ctx context.Context, m *domain.CashMovement) error {
	err := s.txm.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.movements.Append(txCtx, m); err != nil {
			return err
		}
		return s.publisher.PublishInTx(txCtx, "cash.movement.recorded", m.MovementID, map[string]any{
			"movement_id": m.MovementID,
			"tenant_id":   m.TenantID,
			"type":        string(m.Type),
			"amount":      m.Amount.String(),
			"date":        m.Date.Format(time.RFC3339),
		})
	})
	if err != nil {
		return err
	}
	day := m.Date.Format(dayFormat)
	if cerr := s.cache.Invalidate(ctx, m.TenantID, day); cerr != nil {
		s.logger.WarnContext(ctx, "failed to invalidate summary cache", "day", day, "error", cerr)
	}
	return nil
}

// MovementsByDate 返回某日历日的全部流水
func (s *CashLedgerService) MovementsByDate(ctx context.Context, date time.Time) ([]domain.CashMovement, error) {
	from, to := domain.DayWindow(date)
	return s.movements.ListRange(ctx, tenantctx.Tenant(ctx), from, to)
}

// Summary 当日收支汇总，优先走读缓存
func (s *CashLedgerService) Summary(ctx context.Context, date time.Time) (domain.DaySummary, error) {
	tenantID := tenantctx.Tenant(ctx)
	day := date.UTC().Format(dayFormat)

	if cached, err := s.cache.Get(ctx, tenantID, day); err != nil {
		s.logger.WarnContext(ctx, "summary cache read failed", "day", day, "error", err)
	} else if cached != nil {
		return *cached, nil
	}

	movs, err := s.MovementsByDate(ctx, date)
	if err != nil {
		return domain.DaySummary{}, err
	}
	summary := domain.Summarize(movs)

	if err := s.cache.Set(ctx, tenantID, day, summary); err != nil {
		s.logger.WarnContext(ctx, "summary cache write failed", "day", day, "error", err)
	}
	return summary, nil
}

// Status 重放当日流水推导钱箱状态
func (s *CashLedgerService) Status(ctx context.Context, date time.Time) (domain.RegisterStatus, error) {
	movs, err := s.MovementsByDate(ctx, date)
	if err != nil {
		return domain.RegisterStatus{}, err
	}
	return domain.DeriveStatus(movs), nil
}

// Open 开箱。状态校验与写入在同一事务内完成，避免并发开箱竞态。
func (s *CashLedgerService) Open(ctx context.Context, initialAmount decimal.Decimal, userID string) (*domain.CashMovement, error) {
	now := s.now().UTC()
	from, to := domain.DayWindow(now)
	tenantID := tenantctx.Tenant(ctx)

	m := &domain.CashMovement{
		MovementID:  fmt.Sprintf("MOV-%d", idgen.GenID()),
		Date:        now,
		Type:        domain.MovementTypeOpening,
		Amount:      initialAmount,
		Description: "Apertura de caja",
		TenantID:    tenantID,
		UserID:      userID,
	}

	err := s.txm.Transaction(ctx, func(txCtx context.Context) error {
		structural, err := s.movements.ListStructuralRange(txCtx, tenantID, from, to)
		if err != nil {
			return err
		}
		if domain.DeriveStatus(structural).IsOpen {
			return domain.ErrAlreadyOpen
		}
		if err := s.movements.Append(txCtx, m); err != nil {
			return err
		}
		return s.publisher.PublishInTx(txCtx, "cash.movement.recorded", m.MovementID, map[string]any{
			"movement_id": m.MovementID, "tenant_id": tenantID, "type": string(m.Type), "amount": m.Amount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Close 收箱。金额是收箱瞬间 currentBalance 的快照。
func (s *CashLedgerService) Close(ctx context.Context) (*domain.CashMovement, error) {
	now := s.now().UTC()
	from, to := domain.DayWindow(now)
	tenantID := tenantctx.Tenant(ctx)

	var m *domain.CashMovement
	err := s.txm.Transaction(ctx, func(txCtx context.Context) error {
		movs, err := s.movements.ListRange(txCtx, tenantID, from, to)
		if err != nil {
			return err
		}
		status := domain.DeriveStatus(movs)
		if !status.IsOpen {
			return domain.ErrNotOpen
		}
		m = &domain.CashMovement{
			MovementID:  fmt.Sprintf("MOV-%d", idgen.GenID()),
			Date:        now,
			Type:        domain.MovementTypeClosing,
			Amount:      status.CurrentBalance,
			Description: "Cierre de caja",
			TenantID:    tenantID,
		}
		if err := s.movements.Append(txCtx, m); err != nil {
			return err
		}
		return s.publisher.PublishInTx(txCtx, "cash.movement.recorded", m.MovementID, map[string]any{
			"movement_id": m.MovementID, "tenant_id": tenantID, "type": string(m.Type), "amount": m.Amount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// History 最近 limitDays 个日历日，仅保留有动静的天
func (s *CashLedgerService) History(ctx context.Context, limitDays int) ([]domain.DayReport, error) {
	if limitDays <= 0 {
		limitDays = 7
	}
	today := s.now().UTC()

	reports := make([]domain.DayReport, 0, limitDays)
	for i := 0; i < limitDays; i++ {
		day := today.AddDate(0, 0, -i)
		movs, err := s.MovementsByDate(ctx, day)
		if err != nil {
			return nil, err
		}
		report := domain.DayReport{
			Date:    day.Format(dayFormat),
			Summary: domain.Summarize(movs),
			Status:  domain.DeriveStatus(movs),
		}
		if report.Active() {
			reports = append(reports, report)
		}
	}
	return reports, nil
}
