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

func at(hour int) time.Time {
	return time.Date(2026, 5, 10, hour, 0, 0, 0, time.UTC)
}

func mov(t MovementType, amount string, when time.Time) CashMovement {
	return CashMovement{Type: t, Amount: d(amount), Date: when, TenantID: "default"}
}

func TestDeriveStatusClosedDay(t *testing.T) {
	movs := []CashMovement{
		mov(MovementTypeOpening, "1000", at(9)),
		mov(MovementTypeIncome, "500", at(10)),
		mov(MovementTypeClosing, "1500", at(18)),
	}

	status := DeriveStatus(movs)

	assert.False(t, status.IsOpen)
	assert.True(t, status.IsClosed)
	assert.True(t, status.CurrentBalance.IsZero())
	assert.True(t, status.StartBalance.IsZero())
	require.NotNil(t, status.ClosingTime)
	assert.Equal(t, at(18), *status.ClosingTime)
}

func TestDeriveStatusOpenDay(t *testing.T) {
	movs := []CashMovement{
		mov(MovementTypeOpening, "1000", at(9)),
		mov(MovementTypeIncome, "500", at(10)),
	}

	status := DeriveStatus(movs)

	assert.True(t, status.IsOpen)
	assert.False(t, status.IsClosed)
	assert.True(t, d("1000").Equal(status.StartBalance))
	assert.True(t, d("1500").Equal(status.CurrentBalance))
	require.NotNil(t, status.OpeningTime)
	assert.Equal(t, at(9), *status.OpeningTime)
}

func TestDeriveStatusReopenAfterClose(t *testing.T) {
	// close then reopen within the same day: the last structural marker wins,
	// and only movements after it count toward the session
	movs := []CashMovement{
		mov(MovementTypeOpening, "1000", at(9)),
		mov(MovementTypeIncome, "300", at(10)),
		mov(MovementTypeClosing, "1300", at(12)),
		mov(MovementTypeOpening, "200", at(14)),
		mov(MovementTypeExpense, "50", at(15)),
	}

	status := DeriveStatus(movs)

	assert.True(t, status.IsOpen)
	assert.True(t, d("200").Equal(status.StartBalance))
	assert.True(t, d("150").Equal(status.CurrentBalance))
	assert.True(t, d("50").Equal(status.Expense))
	assert.True(t, status.Income.IsZero())
}

func TestDeriveStatusNoStructuralMovements(t *testing.T) {
	status := DeriveStatus([]CashMovement{mov(MovementTypeIncome, "100", at(10))})

	assert.False(t, status.IsOpen)
	assert.False(t, status.IsClosed)
	assert.True(t, status.CurrentBalance.IsZero())
}

func TestSummarizeExcludesStructuralMovements(t *testing.T) {
	movs := []CashMovement{
		mov(MovementTypeOpening, "1000", at(9)),
		mov(MovementTypeIncome, "500", at(10)),
		mov(MovementTypeExpense, "200", at(11)),
		mov(MovementTypeClosing, "1300", at(18)),
	}

	summary := Summarize(movs)

	assert.True(t, d("500").Equal(summary.Income))
	assert.True(t, d("200").Equal(summary.Expense))
	// summary balance excludes the opening amount...
	assert.True(t, d("300").Equal(summary.Balance))

	// ...while the derived session balance includes it
	open := DeriveStatus(movs[:3])
	assert.True(t, d("1300").Equal(open.CurrentBalance))
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(time.Date(2026, 5, 10, 17, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 5, 10, 23, 59, 59, 999000000, time.UTC), to)
}

func TestParseMovementType(t *testing.T) {
	for _, valid := range []string{"INCOME", "EXPENSE", "OPENING", "CLOSING"} {
		got, err := ParseMovementType(valid)
		require.NoError(t, err)
		assert.Equal(t, MovementType(valid), got)
	}

	_, err := ParseMovementType("TRANSFER")
	assert.ErrorIs(t, err, ErrInvalidMovementType)
}

func TestDayReportActive(t *testing.T) {
	assert.False(t, DayReport{Summary: DaySummary{Income: decimal.Zero, Expense: decimal.Zero}}.Active())
	assert.True(t, DayReport{Summary: DaySummary{Income: d("1"), Expense: decimal.Zero}}.Active())
	assert.True(t, DayReport{Summary: DaySummary{Income: decimal.Zero, Expense: d("1")}}.Active())
	assert.True(t, DayReport{Status: RegisterStatus{IsClosed: true}}.Active())
}
