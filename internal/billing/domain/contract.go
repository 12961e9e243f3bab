// Package domain 账单核心领域层
// 覆盖：合同、分期计划、发票、支付四个聚合，以及
// 分期生成、瀑布式分配、余额对账三组纯领域逻辑。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractStatus 合同状态
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// PaymentMethod 付款方式
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCredit PaymentMethod = "CREDIT"
	PaymentMethodCard   PaymentMethod = "CARD"
)

// Contract 合同聚合根
// 不变量（目标）：totalAmount − balance = 已分配到该合同的支付合计。
type Contract struct {
	gorm.Model
	ContractID    string          `gorm:"column:contract_id;type:varchar(32);uniqueIndex;not null" json:"contract_id"`
	QuoteID       string          `gorm:"column:quote_id;type:varchar(32);index;not null" json:"quote_id"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	Balance       decimal.Decimal `gorm:"column:balance;type:decimal(12,2);not null" json:"balance"`
	PaymentMethod PaymentMethod   `gorm:"column:payment_method;type:varchar(16);not null" json:"payment_method"`
	Installments  int             `gorm:"column:installments;not null;default:1" json:"installments"`
	Status        ContractStatus  `gorm:"column:status;type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	TenantID      string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`

	Schedule []CreditScheduleInstallment `gorm:"foreignKey:ContractID;references:ContractID" json:"schedule,omitempty"`
}

// TableName 表名
func (Contract) TableName() string {
	return "contracts"
}

// NewContract 由报价单生成合同，初始余额等于合同总额
func NewContract(contractID, quoteID, tenantID string, total decimal.Decimal, method PaymentMethod, installments int) *Contract {
	if installments < 1 {
		installments = 1
	}
	return &Contract{
		ContractID:    contractID,
		QuoteID:       quoteID,
		TotalAmount:   total,
		Balance:       total,
		PaymentMethod: method,
		Installments:  installments,
		Status:        ContractStatusActive,
		TenantID:      tenantID,
	}
}

// ApplyBalance 以 newBalance 更新合同余额并推进状态机。
// ACTIVE → COMPLETED 单向：余额 ≤ 0 即完成，已完成的合同不会退回 ACTIVE。
// CANCELLED 由外部流程设置，取消后的合同拒绝任何余额变更。
func (c *Contract) ApplyBalance(newBalance decimal.Decimal) error {
	switch c.Status {
	case ContractStatusActive:
		c.Balance = newBalance
		if newBalance.LessThanOrEqual(decimal.Zero) {
			c.Status = ContractStatusCompleted
		}
		return nil
	case ContractStatusCompleted:
		c.Balance = newBalance
		return nil
	default:
		return ErrInvalidTransition
	}
}

// ScheduleStart 分期起始日；目前即合同创建时刻
func (c *Contract) ScheduleStart(now time.Time) time.Time {
	if c.CreatedAt.IsZero() {
		return now
	}
	return c.CreatedAt
}
