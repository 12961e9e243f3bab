package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/cmendieta2311/odonto-app-sub000/internal/shared/tenantctx"
	"github.com/wyfcoding/pkg/idgen"
)

// ContractService 合同生成：把报价单转成合同，必要时连带分期计划与形式发票。
type ContractService struct {
	contracts domain.ContractRepository
	schedule  domain.ScheduleRepository
	invoices  domain.InvoiceRepository
	quotes    domain.QuoteRepository
	txm       domain.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewContractService 创建合同服务
func NewContractService(
	contracts domain.ContractRepository,
	schedule domain.ScheduleRepository,
	invoices domain.InvoiceRepository,
	quotes domain.QuoteRepository,
	txm domain.TransactionManager,
	logger *slog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		schedule:  schedule,
		invoices:  invoices,
		quotes:    quotes,
		txm:       txm,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateContractCommand 由报价单生成合同
type GenerateContractCommand struct {
	QuoteID       string
	PaymentMethod domain.PaymentMethod
	Installments  int
	// WithInvoice 同时开一张 PENDING 形式发票
	WithInvoice bool
}

// Generate 报价单 → 合同（+分期计划）。合同、分期、发票、报价单标记同一事务落库。
// 报价单审批通过后的自动转换也走这里。
func (s *ContractService) Generate(ctx context.Context, cmd GenerateContractCommand) (*domain.Contract, error) {
	var contract *domain.Contract
	err := s.txm.Transaction(ctx, func(txCtx context.Context) error {
		quote, err := s.quotes.GetByID(txCtx, cmd.QuoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return fmt.Errorf("%w: quote %s", domain.ErrNotFound, cmd.QuoteID)
		}
		if existing, err := s.contracts.GetByQuoteID(txCtx, cmd.QuoteID); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("%w: quote %s -> contract %s", domain.ErrQuoteAlreadyConverted, cmd.QuoteID, existing.ContractID)
		}

		tenantID := tenantctx.Tenant(txCtx)
		contract = domain.NewContract(
			fmt.Sprintf("CON-%d", idgen.GenID()),
			quote.QuoteID,
			tenantID,
			quote.Total,
			cmd.PaymentMethod,
			cmd.Installments,
		)
		if err := s.contracts.Save(txCtx, contract); err != nil {
			return err
		}

		rows := domain.GenerateSchedule(contract.ContractID, tenantID, cmd.PaymentMethod, quote.Total, cmd.Installments, contract.ScheduleStart(s.now().UTC()))
		if len(rows) > 0 {
			ptrs := make([]*domain.CreditScheduleInstallment, len(rows))
			for i := range rows {
				ptrs[i] = &rows[i]
			}
			if err := s.schedule.SaveAll(txCtx, ptrs); err != nil {
				return err
			}
		}

		if cmd.WithInvoice {
			count, err := s.invoices.Count(txCtx)
			if err != nil {
				return err
			}
			inv := &domain.Invoice{
				Number:     fmt.Sprintf("FAC-%d-%05d", s.now().Year(), count+1),
				PatientID:  quote.PatientID,
				ContractID: &contract.ContractID,
				Amount:     quote.Total,
				Balance:    quote.Total,
				Status:     domain.InvoiceStatusPending,
				TenantID:   tenantID,
				Items: []domain.InvoiceItem{{
					Description: fmt.Sprintf("Contrato %s", contract.ContractID),
					Quantity:    1,
					UnitPrice:   quote.Total,
					Total:       quote.Total,
				}},
			}
			if err := s.invoices.Save(txCtx, inv); err != nil {
				return err
			}
		}

		quote.Status = domain.QuoteStatusConverted
		return s.quotes.Save(txCtx, quote)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "contract generation failed", "quote_id", cmd.QuoteID, "error", err)
		return nil, err
	}
	return contract, nil
}
