package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DaySummary 单日收支汇总。balance 不含开箱金额，这一点区别于
// RegisterStatus.CurrentBalance（后者包含开箱金额）。
type DaySummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// RegisterStatus 由当日流水推导出的钱箱状态
type RegisterStatus struct {
	IsOpen         bool            `json:"is_open"`
	IsClosed       bool            `json:"is_closed"`
	OpeningTime    *time.Time      `json:"opening_time,omitempty"`
	ClosingTime    *time.Time      `json:"closing_time,omitempty"`
	StartBalance   decimal.Decimal `json:"start_balance"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	OpenedBy       string          `json:"opened_by,omitempty"`
}

func sortByDate(movs []CashMovement) []CashMovement {
	sorted := make([]CashMovement, len(movs))
	copy(sorted, movs)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date.Before(sorted[b].Date)
	})
	return sorted
}

// Summarize 汇总一日收支。结构性流水（OPENING/CLOSING）不计入。
func Summarize(movs []CashMovement) DaySummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range movs {
		switch m.Type {
		case MovementTypeIncome:
			income = income.Add(m.Amount)
		case MovementTypeExpense:
			expense = expense.Add(m.Amount)
		}
	}
	return DaySummary{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// DeriveStatus 纯函数 reducer：重放一日流水推导钱箱状态。
//
// 取结构性流水按时间升序的最后一条：
//   - OPENING：钱箱开着，起始余额为其金额，当前余额 = 起始 + 其后的收入 − 其后的支出；
//   - CLOSING：钱箱已收，当前余额与起始余额归零；
//   - 无结构性流水：两个标志都不置位。
func DeriveStatus(movs []CashMovement) RegisterStatus {
	sorted := sortByDate(movs)

	var last *CashMovement
	for idx := range sorted {
		if sorted[idx].Type.Structural() {
			last = &sorted[idx]
		}
	}

	status := RegisterStatus{
		StartBalance:   decimal.Zero,
		Income:         decimal.Zero,
		Expense:        decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	if last == nil {
		return status
	}

	if last.Type == MovementTypeClosing {
		status.IsClosed = true
		closedAt := last.Date
		status.ClosingTime = &closedAt
		return status
	}

	// last.Type == OPENING
	status.IsOpen = true
	openedAt := last.Date
	status.OpeningTime = &openedAt
	status.StartBalance = last.Amount
	status.OpenedBy = last.UserID

	for _, m := range sorted {
		if !m.Date.After(last.Date) {
			continue
		}
		switch m.Type {
		case MovementTypeIncome:
			status.Income = status.Income.Add(m.Amount)
		case MovementTypeExpense:
			status.Expense = status.Expense.Add(m.Amount)
		}
	}
	status.CurrentBalance = status.StartBalance.Add(status.Income).Sub(status.Expense)
	return status
}

// DayReport 历史视图里的一天
type DayReport struct {
	Date    string         `json:"date"`
	Summary DaySummary     `json:"summary"`
	Status  RegisterStatus `json:"status"`
}

// Active 该天是否值得出现在历史里：有收入、有支出或已收箱
func (d DayReport) Active() bool {
	return d.Summary.Income.IsPositive() || d.Summary.Expense.IsPositive() || d.Status.IsClosed
}
