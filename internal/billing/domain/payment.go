package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment 支付记录。由分配器创建，除回填 invoiceId 外永不修改。
type Payment struct {
	gorm.Model
	PaymentID  string          `gorm:"column:payment_id;type:varchar(32);uniqueIndex;not null" json:"payment_id"`
	ContractID *string         `gorm:"column:contract_id;type:varchar(32);index" json:"contract_id,omitempty"`
	InvoiceID  *uint           `gorm:"column:invoice_id;index" json:"invoice_id,omitempty"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Method     PaymentMethod   `gorm:"column:method;type:varchar(16);not null" json:"method"`
	Notes      string          `gorm:"column:notes;type:varchar(255)" json:"notes,omitempty"`
	TenantID   string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// CollectionSummary 合同回款读模型，由 billing.payment.recorded 事件驱动刷新
type CollectionSummary struct {
	gorm.Model
	ContractID     string          `gorm:"column:contract_id;type:varchar(32);uniqueIndex;not null" json:"contract_id"`
	TotalCollected decimal.Decimal `gorm:"column:total_collected;type:decimal(12,2);not null;default:0" json:"total_collected"`
	PaymentCount   int64           `gorm:"column:payment_count;not null;default:0" json:"payment_count"`
	LastPaymentAt  *int64          `gorm:"column:last_payment_at" json:"last_payment_at,omitempty"`
	TenantID       string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`
}

// TableName 表名
func (CollectionSummary) TableName() string {
	return "collection_summaries"
}
