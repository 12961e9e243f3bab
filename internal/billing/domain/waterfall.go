package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ScheduleAllocation 一次瀑布分配的结果
type ScheduleAllocation struct {
	// Touched 状态或已收金额发生变化、需要落库的分期行
	Touched []*CreditScheduleInstallment
	// Remaining 分配完所有可收期后仍未消化的金额
	Remaining decimal.Decimal
}

// sortPayable 过滤出可收款的分期并按到期日升序排列（最早到期优先）
func sortPayable(rows []*CreditScheduleInstallment) []*CreditScheduleInstallment {
	payable := make([]*CreditScheduleInstallment, 0, len(rows))
	for _, r := range rows {
		if r.Payable() {
			payable = append(payable, r)
		}
	}
	sort.SliceStable(payable, func(a, b int) bool {
		return payable[a].DueDate.Before(payable[b].DueDate)
	})
	return payable
}

// AllocateWaterfall 把 amount 按到期日先后灌入分期计划（直接向合同收款的路径）。
// 整期喂饱置 PAID；零头落在某一期则累加其 paidAmount 置 PARTIALLY_PAID 后停止。
func AllocateWaterfall(rows []*CreditScheduleInstallment, amount decimal.Decimal) ScheduleAllocation {
	remaining := amount
	var touched []*CreditScheduleInstallment

	for _, row := range sortPayable(rows) {
		if !remaining.IsPositive() {
			break
		}
		outstanding := row.Outstanding()
		if remaining.GreaterThanOrEqual(outstanding) {
			row.applyPaid(outstanding)
			remaining = remaining.Sub(outstanding)
		} else {
			row.applyPaid(remaining)
			remaining = decimal.Zero
		}
		touched = append(touched, row)
	}
	return ScheduleAllocation{Touched: touched, Remaining: remaining}
}

// SweepWholeInstallments 发票路径的简化清扫：只整期核销（remaining ≥ 本期全额才置 PAID），
// 首个塞不下的期直接停止，不做期内部分分配。OVERDUE 行不参与此路径。
func SweepWholeInstallments(rows []*CreditScheduleInstallment, amount decimal.Decimal) ScheduleAllocation {
	remaining := amount
	var touched []*CreditScheduleInstallment

	pending := make([]*CreditScheduleInstallment, 0, len(rows))
	for _, r := range rows {
		if r.Status == InstallmentStatusPending || r.Status == InstallmentStatusPartiallyPaid {
			pending = append(pending, r)
		}
	}
	sort.SliceStable(pending, func(a, b int) bool {
		return pending[a].DueDate.Before(pending[b].DueDate)
	})

	for _, row := range pending {
		if remaining.LessThan(row.Amount) {
			break
		}
		row.PaidAmount = row.Amount
		row.Status = InstallmentStatusPaid
		remaining = remaining.Sub(row.Amount)
		touched = append(touched, row)
	}
	return ScheduleAllocation{Touched: touched, Remaining: remaining}
}
