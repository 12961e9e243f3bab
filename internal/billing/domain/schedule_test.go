package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestGenerateSchedule(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	rows := GenerateSchedule("CON-1", "default", PaymentMethodCredit, d("1200"), 12, start)
	require.Len(t, rows, 12)

	for i, row := range rows {
		assert.True(t, d("100").Equal(row.Amount), "installment %d amount", i)
		assert.True(t, row.PaidAmount.IsZero())
		assert.Equal(t, InstallmentStatusPending, row.Status)
		assert.Equal(t, "CON-1", row.ContractID)
		assert.Equal(t, start.AddDate(0, i+1, 0), row.DueDate)
	}
}

func TestGenerateScheduleRoundsWithoutRedistribution(t *testing.T) {
	rows := GenerateSchedule("CON-1", "default", PaymentMethodCredit, d("1000"), 3, time.Now())
	require.Len(t, rows, 3)

	// 1000/3 → 333.33 per row; the residue is not pushed onto the last installment
	for _, row := range rows {
		assert.True(t, d("333.33").Equal(row.Amount), "got %s", row.Amount)
	}
}

func TestGenerateScheduleMonthRollover(t *testing.T) {
	// Jan 31 + 1 month overflows February and lands in early March
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := GenerateSchedule("CON-1", "default", PaymentMethodCredit, d("200"), 2, start)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), rows[1].DueDate)
}

func TestGenerateScheduleOnlyForMultiInstallmentCredit(t *testing.T) {
	now := time.Now()

	assert.Nil(t, GenerateSchedule("CON-1", "default", PaymentMethodCash, d("500"), 5, now))
	assert.Nil(t, GenerateSchedule("CON-1", "default", PaymentMethodCredit, d("500"), 1, now))
	assert.Nil(t, GenerateSchedule("CON-1", "default", PaymentMethodCard, d("500"), 3, now))
}
