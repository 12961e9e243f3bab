package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileContractSelfHealing(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	contract := &Contract{ContractID: "CON-1", Balance: d("0"), Status: ContractStatusActive}
	rows := []*CreditScheduleInstallment{
		installment("100", "0", InstallmentStatusPending, base),
		installment("100", "0", InstallmentStatusOverdue, base.AddDate(0, 1, 0)),
		installment("100", "0", InstallmentStatusPartiallyPaid, base.AddDate(0, 2, 0)),
	}
	rows[2].PaidAmount = d("0") // PARTIALLY_PAID with zero paid is itself invalid
	rows[2].Status = InstallmentStatusPending

	recon, err := ReconcileContract(contract, rows)
	require.NoError(t, err)

	assert.True(t, d("300").Equal(recon.PendingScheduleSum))
	assert.True(t, recon.Drifted)

	// stale stored balance of 0, but the detail sum covers 200 → trust the detail
	eff, ok := recon.EffectiveBalance(d("200"))
	require.True(t, ok)
	assert.True(t, d("300").Equal(eff))

	// 400 exceeds both figures → rejected
	_, ok = recon.EffectiveBalance(d("400"))
	assert.False(t, ok)
}

func TestReconcileContractBaseline(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	contract := &Contract{ContractID: "CON-1", Balance: d("500"), Status: ContractStatusActive}
	rows := []*CreditScheduleInstallment{
		installment("100", "0", InstallmentStatusPending, base),
	}

	recon, err := ReconcileContract(contract, rows)
	require.NoError(t, err)

	// baseline is the max of stored balance and schedule sum
	assert.True(t, d("500").Equal(recon.Baseline()))
	assert.True(t, recon.Drifted)
}

func TestReconcileContractNoSchedule(t *testing.T) {
	contract := &Contract{ContractID: "CON-1", Balance: d("250"), Status: ContractStatusActive}

	recon, err := ReconcileContract(contract, nil)
	require.NoError(t, err)

	assert.False(t, recon.Drifted)
	assert.True(t, recon.PendingScheduleSum.IsZero())
	assert.True(t, d("250").Equal(recon.Baseline()))
}

func TestReconcileContractSurfacesInvariantViolations(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	contract := &Contract{ContractID: "CON-1", Balance: d("100"), Status: ContractStatusActive}

	negative := installment("100", "0", InstallmentStatusPending, base)
	negative.PaidAmount = d("-5")

	_, err := ReconcileContract(contract, []*CreditScheduleInstallment{negative})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	overpaid := installment("100", "120", InstallmentStatusPaid, base)
	_, err = ReconcileContract(contract, []*CreditScheduleInstallment{overpaid})
	assert.ErrorIs(t, err, ErrInvariantViolation)
}
