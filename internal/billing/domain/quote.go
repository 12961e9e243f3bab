package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus 报价单状态
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "PENDING"
	QuoteStatusApproved  QuoteStatus = "APPROVED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
)

// Quote 报价单。本核心只消费它：按 id 查询、转合同时标记 CONVERTED，
// 其余 CRUD 属于外围诊疗流程，不在此实现。
type Quote struct {
	gorm.Model
	QuoteID   string          `gorm:"column:quote_id;type:varchar(32);uniqueIndex;not null" json:"quote_id"`
	PatientID string          `gorm:"column:patient_id;type:varchar(32);index;not null" json:"patient_id"`
	Total     decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	Status    QuoteStatus     `gorm:"column:status;type:varchar(16);not null;default:'PENDING'" json:"status"`
	TenantID  string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`
}

// TableName 表名
func (Quote) TableName() string {
	return "quotes"
}
