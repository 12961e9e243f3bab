package domain

import "github.com/shopspring/decimal"

// Reconciliation 余额对账结果
type Reconciliation struct {
	// StoredBalance 合同上存储的聚合余额
	StoredBalance decimal.Decimal
	// PendingScheduleSum 分期明细的待收合计 Σ(amount − paidAmount)，
	// 仅统计 PENDING / PARTIALLY_PAID / OVERDUE 三种可收状态
	PendingScheduleSum decimal.Decimal
	// Drifted 存储聚合与明细合计不一致
	Drifted bool
}

// Baseline 扣款前基线：取存储余额与明细合计中较大者（防御性取 max）
func (r Reconciliation) Baseline() decimal.Decimal {
	if r.PendingScheduleSum.GreaterThan(r.StoredBalance) {
		return r.PendingScheduleSum
	}
	return r.StoredBalance
}

// ReconcileContract 集中式"自愈"对账：对照存储余额与分期明细待收合计。
// 所有需要判断合同有效余额的调用点都走这里，避免各处各算一套产生分歧。
// 明细行不变量被破坏时返回 ErrInvariantViolation，绝不吞掉。
func ReconcileContract(c *Contract, rows []*CreditScheduleInstallment) (Reconciliation, error) {
	sum := decimal.Zero
	for _, row := range rows {
		if err := row.CheckInvariants(); err != nil {
			return Reconciliation{}, err
		}
		if row.Payable() {
			sum = sum.Add(row.Outstanding())
		}
	}
	return Reconciliation{
		StoredBalance:      c.Balance,
		PendingScheduleSum: sum,
		Drifted:            len(rows) > 0 && !sum.Equal(c.Balance),
	}, nil
}

// EffectiveBalance 判定一笔 amount 能否收下。
// 存储余额不足而明细合计足够时，信任明细（自愈）；两者都不足返回 false，
// 调用方须把两个数字一并报给用户。
func (r Reconciliation) EffectiveBalance(amount decimal.Decimal) (decimal.Decimal, bool) {
	if amount.LessThanOrEqual(r.StoredBalance) {
		return r.StoredBalance, true
	}
	if r.PendingScheduleSum.GreaterThanOrEqual(amount) {
		return r.PendingScheduleSum, true
	}
	return r.StoredBalance, false
}
