package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus 发票状态
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// Closed 终态（已付清或已作废）不可再收款
func (s InvoiceStatus) Closed() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice 发票聚合根
type Invoice struct {
	gorm.Model
	Number     string          `gorm:"column:number;type:varchar(32);uniqueIndex;not null" json:"number"`
	PatientID  string          `gorm:"column:patient_id;type:varchar(32);index;not null" json:"patient_id"`
	ContractID *string         `gorm:"column:contract_id;type:varchar(32);index" json:"contract_id,omitempty"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Balance    decimal.Decimal `gorm:"column:balance;type:decimal(12,2);not null" json:"balance"`
	Status     InvoiceStatus   `gorm:"column:status;type:varchar(16);not null;default:'PENDING'" json:"status"`
	TenantID   string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// TableName 表名
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem 发票明细行
type InvoiceItem struct {
	gorm.Model
	InvoiceID   uint            `gorm:"column:invoice_id;index;not null" json:"invoice_id"`
	Description string          `gorm:"column:description;type:varchar(255);not null" json:"description"`
	Quantity    int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
}

// TableName 表名
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// ApplyPayment 扣减发票余额并推进状态机：
// 付清置 PAID，部分收款置 PARTIALLY_PAID。
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Status.Closed() {
		return ErrInvoiceClosed
	}
	inv.Balance = inv.Balance.Sub(amount)
	if inv.Balance.LessThanOrEqual(decimal.Zero) {
		inv.Status = InvoiceStatusPaid
	} else if inv.Balance.LessThan(inv.Amount) {
		inv.Status = InvoiceStatusPartiallyPaid
	}
	return nil
}

// NewReceiptInvoice 直接向合同收款时自动生成的收据发票：
// 开出即付清（balance=0, PAID），仅含一条 "Pago a cuenta de contrato" 明细，
// 作为审计留痕。number 形如 REC-<年份>-<五位流水>。
func NewReceiptInvoice(number, patientID, contractID, tenantID string, amount decimal.Decimal) *Invoice {
	return &Invoice{
		Number:     number,
		PatientID:  patientID,
		ContractID: &contractID,
		Amount:     amount,
		Balance:    decimal.Zero,
		Status:     InvoiceStatusPaid,
		TenantID:   tenantID,
		Items: []InvoiceItem{{
			Description: "Pago a cuenta de contrato",
			Quantity:    1,
			UnitPrice:   amount,
			Total:       amount,
		}},
	}
}
