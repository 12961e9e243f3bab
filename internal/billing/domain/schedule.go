package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateSchedule 把融资额拆成逐月到期的分期计划。
//
// 仅当付款方式为 CREDIT 且期数 > 1 时生成；CASH 或单期 CREDIT 返回 nil。
// 每期金额 = financed / count，四舍五入到分，不做尾差重分配，
// 因此 count 期合计可能与 financed 相差不超过 count*0.005。
// 到期日按整月顺延，采用 time.AddDate 的月末溢出语义
// （1 月 31 日 + 1 个月 = 3 月 2/3 日），溢出日顺延进下一个月。
func GenerateSchedule(contractID, tenantID string, method PaymentMethod, financed decimal.Decimal, count int, start time.Time) []CreditScheduleInstallment {
	if method != PaymentMethodCredit || count <= 1 {
		return nil
	}

	per := financed.Div(decimal.NewFromInt(int64(count))).Round(2)

	rows := make([]CreditScheduleInstallment, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, CreditScheduleInstallment{
			ContractID: contractID,
			Amount:     per,
			PaidAmount: decimal.Zero,
			DueDate:    start.AddDate(0, i+1, 0),
			Status:     InstallmentStatusPending,
			TenantID:   tenantID,
		})
	}
	return rows
}
