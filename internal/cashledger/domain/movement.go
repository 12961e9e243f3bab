// Package domain 现金台账领域层
// 台账是唯一事实来源：没有可变的"班次"记录，开合状态与当日汇总
// 全部由当天的流水重放推导（最小化的事件溯源 reducer）。
// 流水只追加，永不更新或删除，以保全审计链。
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 领域错误哨兵
var (
	// ErrAlreadyOpen 当日钱箱已开，不可重复开箱
	ErrAlreadyOpen = errors.New("cash register is already open")
	// ErrNotOpen 钱箱未开，不可收箱
	ErrNotOpen = errors.New("cash register is not open")
	// ErrInvalidMovementType 未知流水类型，显式拒绝而不是静默丢弃
	ErrInvalidMovementType = errors.New("invalid cash movement type")
)

// MovementType 流水类型
type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
	// OPENING / CLOSING 为结构性标记，只划定班次边界，不计入收支合计
	MovementTypeOpening MovementType = "OPENING"
	MovementTypeClosing MovementType = "CLOSING"
)

// ParseMovementType 类型映射表，未知值一律报错（不静默吞掉）
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementTypeIncome, MovementTypeExpense, MovementTypeOpening, MovementTypeClosing:
		return MovementType(s), nil
	}
	return "", ErrInvalidMovementType
}

// Structural 是否为班次边界标记
func (t MovementType) Structural() bool {
	return t == MovementTypeOpening || t == MovementTypeClosing
}

// CashMovement 现金流水，只追加不修改
type CashMovement struct {
	gorm.Model
	MovementID    string          `gorm:"column:movement_id;type:varchar(32);uniqueIndex;not null" json:"movement_id"`
	Date          time.Time       `gorm:"column:date;index;not null" json:"date"`
	Type          MovementType    `gorm:"column:type;type:varchar(16);index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Description   string          `gorm:"column:description;type:varchar(255);not null" json:"description"`
	PaymentMethod string          `gorm:"column:payment_method;type:varchar(16)" json:"payment_method,omitempty"`
	ReferenceID   string          `gorm:"column:reference_id;type:varchar(64);index" json:"reference_id,omitempty"`
	Source        string          `gorm:"column:source;type:varchar(32)" json:"source,omitempty"`
	TenantID      string          `gorm:"column:tenant_id;type:varchar(64);index;not null;default:'default'" json:"tenant_id"`
	UserID        string          `gorm:"column:user_id;type:varchar(32)" json:"user_id,omitempty"`
}

// TableName 表名
func (CashMovement) TableName() string {
	return "cash_movements"
}

// DayWindow 日历日的 UTC 时间窗 [00:00:00.000, 23:59:59.999]
func DayWindow(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}
