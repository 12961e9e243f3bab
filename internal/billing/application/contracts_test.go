package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCreditContract(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	quote := &domain.Quote{QuoteID: "QUO-10", PatientID: "PAT-7", Total: d("1200"), Status: domain.QuoteStatusApproved, TenantID: "default"}
	require.NoError(t, f.quotes.Save(ctx, quote))

	contract, err := f.generator.Generate(ctx, GenerateContractCommand{
		QuoteID:       "QUO-10",
		PaymentMethod: domain.PaymentMethodCredit,
		Installments:  4,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(contract.ContractID, "CON-"))
	assert.Equal(t, "QUO-10", contract.QuoteID)
	assert.True(t, d("1200").Equal(contract.TotalAmount))
	assert.True(t, d("1200").Equal(contract.Balance))
	assert.Equal(t, domain.ContractStatusActive, contract.Status)
	assert.Equal(t, 4, contract.Installments)

	rows, err := f.schedule.ListByContract(ctx, contract.ContractID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.True(t, d("300").Equal(row.Amount), "row %d amount %s", i, row.Amount)
		assert.Equal(t, domain.InstallmentStatusPending, row.Status)
		assert.Equal(t, "default", row.TenantID)
	}
	// due dates start one month out, one month apart
	assert.True(t, rows[0].DueDate.After(time.Now()))
	assert.True(t, rows[1].DueDate.After(rows[0].DueDate))

	assert.Equal(t, domain.QuoteStatusConverted, quote.Status)
}

func TestGenerateCashContractHasNoSchedule(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	quote := &domain.Quote{QuoteID: "QUO-11", PatientID: "PAT-7", Total: d("500"), Status: domain.QuoteStatusApproved}
	require.NoError(t, f.quotes.Save(ctx, quote))

	contract, err := f.generator.Generate(ctx, GenerateContractCommand{
		QuoteID:       "QUO-11",
		PaymentMethod: domain.PaymentMethodCash,
		Installments:  1,
	})
	require.NoError(t, err)

	rows, err := f.schedule.ListByContract(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGenerateWithInvoice(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	quote := &domain.Quote{QuoteID: "QUO-12", PatientID: "PAT-8", Total: d("800"), Status: domain.QuoteStatusApproved}
	require.NoError(t, f.quotes.Save(ctx, quote))

	contract, err := f.generator.Generate(ctx, GenerateContractCommand{
		QuoteID:       "QUO-12",
		PaymentMethod: domain.PaymentMethodCard,
		WithInvoice:   true,
	})
	require.NoError(t, err)

	var inv *domain.Invoice
	for _, candidate := range f.invoices.invoices {
		if candidate.ContractID != nil && *candidate.ContractID == contract.ContractID {
			inv = candidate
		}
	}
	require.NotNil(t, inv)
	assert.True(t, strings.HasPrefix(inv.Number, "FAC-"))
	assert.Equal(t, domain.InvoiceStatusPending, inv.Status)
	assert.True(t, d("800").Equal(inv.Balance))
	assert.Equal(t, "PAT-8", inv.PatientID)
}

func TestGenerateRejectsConvertedQuote(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	quote := &domain.Quote{QuoteID: "QUO-13", PatientID: "PAT-9", Total: d("400"), Status: domain.QuoteStatusApproved}
	require.NoError(t, f.quotes.Save(ctx, quote))

	cmd := GenerateContractCommand{QuoteID: "QUO-13", PaymentMethod: domain.PaymentMethodCash}
	_, err := f.generator.Generate(ctx, cmd)
	require.NoError(t, err)

	_, err = f.generator.Generate(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrQuoteAlreadyConverted)
}

func TestGenerateUnknownQuote(t *testing.T) {
	f := newBillingFixture()

	_, err := f.generator.Generate(context.Background(), GenerateContractCommand{
		QuoteID:       "QUO-missing",
		PaymentMethod: domain.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetContractWithSchedule(t *testing.T) {
	f := newBillingFixture()
	contract := f.seedContract(t, "300", 3)

	view, err := f.queries.GetContract(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, contract.ContractID, view.Contract.ContractID)
	assert.Len(t, view.Schedule, 3)

	_, err = f.queries.GetContract(context.Background(), "CON-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetCollectionsBeforeFirstRefresh(t *testing.T) {
	f := newBillingFixture()
	contract := f.seedContract(t, "300", 3)

	summary, err := f.queries.GetCollections(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.True(t, summary.TotalCollected.IsZero())
	assert.Equal(t, int64(0), summary.PaymentCount)
}
