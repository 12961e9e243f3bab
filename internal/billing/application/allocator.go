// Package application 账单核心应用层
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/cmendieta2311/odonto-app-sub000/internal/shared/tenantctx"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"
)

// PaymentService 支付分配器。唯一的公共入口是 Allocate，
// 两种互斥的目标模式：指向发票，或直接指向合同（人工收据流）。
type PaymentService struct {
	contracts domain.ContractRepository
	schedule  domain.ScheduleRepository
	invoices  domain.InvoiceRepository
	payments  domain.PaymentRepository
	quotes    domain.QuoteRepository
	publisher domain.EventPublisher
	txm       domain.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService 创建支付分配器
func NewPaymentService(
	contracts domain.ContractRepository,
	schedule domain.ScheduleRepository,
	invoices domain.InvoiceRepository,
	payments domain.PaymentRepository,
	quotes domain.QuoteRepository,
	publisher domain.EventPublisher,
	txm domain.TransactionManager,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		contracts: contracts,
		schedule:  schedule,
		invoices:  invoices,
		payments:  payments,
		quotes:    quotes,
		publisher: publisher,
		txm:       txm,
		logger:    logger,
		now:       time.Now,
	}
}

// AllocatePaymentCommand 收款命令。InvoiceID 与 ContractID 至少给一个；
// 两者都给时按发票路径处理，ContractID 仅作兜底关联。
type AllocatePaymentCommand struct {
	ContractID string
	InvoiceID  *uint
	Amount     decimal.Decimal
	Method     domain.PaymentMethod
	Notes      string
}

// Allocate 收款并级联更新发票/合同/分期余额。
// 整个分配在一个事务里完成：支付、发票、分期行、合同要么全部落库要么全部回滚。
func (s *PaymentService) Allocate(ctx context.Context, cmd AllocatePaymentCommand) (*domain.Payment, error) {
	if cmd.InvoiceID == nil && cmd.ContractID == "" {
		return nil, domain.ErrNoTarget
	}

	var payment *domain.Payment
	err := s.txm.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		if cmd.InvoiceID != nil {
			payment, err = s.allocateToInvoice(txCtx, cmd)
		} else {
			payment, err = s.allocateToContract(txCtx, cmd)
		}
		if err != nil {
			return err
		}
		return s.publisher.PublishInTx(txCtx, "billing.payment.recorded", payment.PaymentID, map[string]any{
			"payment_id":  payment.PaymentID,
			"contract_id": derefStr(payment.ContractID),
			"amount":      payment.Amount.String(),
			"tenant_id":   payment.TenantID,
		})
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "payment allocation failed", "contract_id", cmd.ContractID, "error", err)
		return nil, err
	}
	return payment, nil
}

// allocateToInvoice 发票路径。锁定发票（连带合同）后收款。
func (s *PaymentService) allocateToInvoice(ctx context.Context, cmd AllocatePaymentCommand) (*domain.Payment, error) {
	inv, err := s.invoices.GetWithLock(ctx, *cmd.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invoice %d", domain.ErrNotFound, *cmd.InvoiceID)
	}
	if inv.Status.Closed() {
		return nil, fmt.Errorf("%w: invoice %s is %s", domain.ErrInvoiceClosed, inv.Number, inv.Status)
	}
	if cmd.Amount.GreaterThan(inv.Balance) {
		// 不做截断：请求金额必须 ≤ 发票余额
		return nil, fmt.Errorf("%w: amount %s exceeds invoice balance %s",
			domain.ErrInsufficientBalance, cmd.Amount, inv.Balance)
	}

	contractID := cmd.ContractID
	if inv.ContractID != nil {
		contractID = *inv.ContractID
	}

	payment := &domain.Payment{
		PaymentID: fmt.Sprintf("PAY-%d", idgen.GenID()),
		InvoiceID: &inv.ID,
		Amount:    cmd.Amount,
		Method:    cmd.Method,
		Notes:     cmd.Notes,
		TenantID:  tenantctx.Tenant(ctx),
	}
	if contractID != "" {
		payment.ContractID = &contractID
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	if err := inv.ApplyPayment(cmd.Amount); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	// 发票挂在合同下：级联扣减合同余额并整期核销分期
	if inv.ContractID != nil {
		if err := s.cascadeToContract(ctx, *inv.ContractID, cmd.Amount); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// cascadeToContract 发票收款向合同的级联：扣余额 + 整期清扫
func (s *PaymentService) cascadeToContract(ctx context.Context, contractID string, amount decimal.Decimal) error {
	contract, err := s.contracts.GetWithLock(ctx, contractID)
	if err != nil {
		return err
	}
	if contract == nil {
		return fmt.Errorf("%w: contract %s", domain.ErrNotFound, contractID)
	}

	if err := contract.ApplyBalance(contract.Balance.Sub(amount)); err != nil {
		return err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return err
	}

	rows, err := s.schedule.ListByContract(ctx, contractID)
	if err != nil {
		return err
	}
	alloc := domain.SweepWholeInstallments(rows, amount)
	return s.schedule.SaveAll(ctx, alloc.Touched)
}

// allocateToContract 合同直收路径（人工/收据流）。
func (s *PaymentService) allocateToContract(ctx context.Context, cmd AllocatePaymentCommand) (*domain.Payment, error) {
	contract, err := s.contracts.GetWithLock(ctx, cmd.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %s", domain.ErrNotFound, cmd.ContractID)
	}

	rows, err := s.schedule.ListByContract(ctx, cmd.ContractID)
	if err != nil {
		return nil, err
	}

	// 自愈对账：存储余额不足时信任明细合计，两者都不足则拒绝并报出两个数字
	recon, err := domain.ReconcileContract(contract, rows)
	if err != nil {
		return nil, err
	}
	if _, ok := recon.EffectiveBalance(cmd.Amount); !ok {
		return nil, fmt.Errorf("%w: amount %s exceeds contract balance %s and pending schedule amount %s",
			domain.ErrInsufficientBalance, cmd.Amount, recon.StoredBalance, recon.PendingScheduleSum)
	}
	if recon.Drifted {
		s.logger.WarnContext(ctx, "contract balance drifted from schedule, reconciling",
			"contract_id", contract.ContractID,
			"stored_balance", recon.StoredBalance.String(),
			"schedule_sum", recon.PendingScheduleSum.String())
	}

	tenantID := tenantctx.Tenant(ctx)
	payment := &domain.Payment{
		PaymentID:  fmt.Sprintf("PAY-%d", idgen.GenID()),
		ContractID: &contract.ContractID,
		Amount:     cmd.Amount,
		Method:     cmd.Method,
		Notes:      cmd.Notes,
		TenantID:   tenantID,
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	// 自动开收据发票留痕，并把支付回链到它
	receipt, err := s.issueReceipt(ctx, contract, tenantID, cmd.Amount)
	if err != nil {
		return nil, err
	}
	payment.InvoiceID = &receipt.ID
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	// 瀑布分配：最早到期优先，零头记部分支付
	alloc := domain.AllocateWaterfall(rows, cmd.Amount)
	if err := s.schedule.SaveAll(ctx, alloc.Touched); err != nil {
		return nil, err
	}

	// 防御性重算合同余额：基线取 max(存储余额, 明细待收合计)
	newBalance := recon.Baseline().Sub(cmd.Amount)
	if err := contract.ApplyBalance(newBalance); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	return payment, nil
}

// issueReceipt 生成 REC-<年>-<五位流水> 收据发票
func (s *PaymentService) issueReceipt(ctx context.Context, contract *domain.Contract, tenantID string, amount decimal.Decimal) (*domain.Invoice, error) {
	quote, err := s.quotes.GetByID(ctx, contract.QuoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, fmt.Errorf("%w: quote %s", domain.ErrNotFound, contract.QuoteID)
	}

	count, err := s.invoices.Count(ctx)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("REC-%d-%05d", s.now().Year(), count+1)

	receipt := domain.NewReceiptInvoice(number, quote.PatientID, contract.ContractID, tenantID, amount)
	if err := s.invoices.Save(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
