package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallmentStatus 分期状态
type InstallmentStatus string

const (
	InstallmentStatusPending       InstallmentStatus = "PENDING"
	InstallmentStatusPartiallyPaid InstallmentStatus = "PARTIALLY_PAID"
	InstallmentStatusPaid          InstallmentStatus = "PAID"
	// InstallmentStatusOverdue 由外部定时任务依据到期日标记；
	// 对分配逻辑而言与 PENDING 完全等价（照常可收款）。
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// CreditScheduleInstallment 分期计划行
// 不变量：0 ≤ paidAmount ≤ amount；
// PAID ⇔ paidAmount==amount；PARTIALLY_PAID ⇔ 0<paidAmount<amount。
type CreditScheduleInstallment struct {
	gorm.Model
	ContractID string            `gorm:"column:contract_id;type:varchar(32);index;not null" json:"contract_id"`
	Amount     decimal.Decimal   `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	PaidAmount decimal.Decimal   `gorm:"column:paid_amount;type:decimal(12,2);not null;default:0" json:"paid_amount"`
	DueDate    time.Time         `gorm:"column:due_date;index;not null" json:"due_date"`
	Status     InstallmentStatus `gorm:"column:status;type:varchar(16);not null;default:'PENDING'" json:"status"`
	TenantID   string            `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`
}

// TableName 表名
func (CreditScheduleInstallment) TableName() string {
	return "credit_schedule_installments"
}

// Outstanding 本期待收金额
func (i *CreditScheduleInstallment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// Payable 分配逻辑是否可向本期收款。OVERDUE 与 PENDING 同等对待。
func (i *CreditScheduleInstallment) Payable() bool {
	switch i.Status {
	case InstallmentStatusPending, InstallmentStatusPartiallyPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

// CheckInvariants 校验分期行不变量，破坏即返回 ErrInvariantViolation
func (i *CreditScheduleInstallment) CheckInvariants() error {
	if i.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: installment %d paid amount %s is negative", ErrInvariantViolation, i.ID, i.PaidAmount)
	}
	if i.PaidAmount.GreaterThan(i.Amount) {
		return fmt.Errorf("%w: installment %d paid %s exceeds amount %s", ErrInvariantViolation, i.ID, i.PaidAmount, i.Amount)
	}
	switch i.Status {
	case InstallmentStatusPaid:
		if !i.PaidAmount.Equal(i.Amount) {
			return fmt.Errorf("%w: installment %d marked PAID with paid %s of %s", ErrInvariantViolation, i.ID, i.PaidAmount, i.Amount)
		}
	case InstallmentStatusPartiallyPaid:
		if !i.PaidAmount.IsPositive() || !i.PaidAmount.LessThan(i.Amount) {
			return fmt.Errorf("%w: installment %d marked PARTIALLY_PAID with paid %s of %s", ErrInvariantViolation, i.ID, i.PaidAmount, i.Amount)
		}
	}
	return nil
}

// applyPaid 累加本期已收（paidAmount 单调递增）并推进状态
func (i *CreditScheduleInstallment) applyPaid(delta decimal.Decimal) {
	i.PaidAmount = i.PaidAmount.Add(delta)
	if i.PaidAmount.GreaterThanOrEqual(i.Amount) {
		i.PaidAmount = i.Amount
		i.Status = InstallmentStatusPaid
	} else if i.PaidAmount.IsPositive() {
		i.Status = InstallmentStatusPartiallyPaid
	}
}
