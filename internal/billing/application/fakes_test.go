package application

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/shopspring/decimal"
)

// in-memory fakes standing in for the gorm repositories

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeContractRepo struct {
	contracts map[string]*domain.Contract
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: map[string]*domain.Contract{}}
}

func (r *fakeContractRepo) Save(_ context.Context, c *domain.Contract) error {
	r.contracts[c.ContractID] = c
	return nil
}

func (r *fakeContractRepo) GetByID(_ context.Context, id string) (*domain.Contract, error) {
	return r.contracts[id], nil
}

func (r *fakeContractRepo) GetWithLock(ctx context.Context, id string) (*domain.Contract, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeContractRepo) GetByQuoteID(_ context.Context, quoteID string) (*domain.Contract, error) {
	for _, c := range r.contracts {
		if c.QuoteID == quoteID {
			return c, nil
		}
	}
	return nil, nil
}

type fakeScheduleRepo struct {
	rows map[string][]*domain.CreditScheduleInstallment
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{rows: map[string][]*domain.CreditScheduleInstallment{}}
}

func (r *fakeScheduleRepo) SaveAll(_ context.Context, rows []*domain.CreditScheduleInstallment) error {
	for _, row := range rows {
		found := false
		for _, existing := range r.rows[row.ContractID] {
			if existing == row {
				found = true
				break
			}
		}
		if !found {
			r.rows[row.ContractID] = append(r.rows[row.ContractID], row)
		}
	}
	return nil
}

func (r *fakeScheduleRepo) ListByContract(_ context.Context, contractID string) ([]*domain.CreditScheduleInstallment, error) {
	rows := append([]*domain.CreditScheduleInstallment(nil), r.rows[contractID]...)
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].DueDate.Before(rows[b].DueDate) })
	return rows, nil
}

type fakeInvoiceRepo struct {
	invoices map[uint]*domain.Invoice
	nextID   uint
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[uint]*domain.Invoice{}, nextID: 1}
}

func (r *fakeInvoiceRepo) Save(_ context.Context, inv *domain.Invoice) error {
	if inv.ID == 0 {
		inv.ID = r.nextID
		r.nextID++
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uint) (*domain.Invoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) GetWithLock(ctx context.Context, id uint) (*domain.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.invoices)), nil
}

type fakePaymentRepo struct {
	payments []*domain.Payment
}

func (r *fakePaymentRepo) Save(_ context.Context, p *domain.Payment) error {
	for _, existing := range r.payments {
		if existing.PaymentID == p.PaymentID {
			return nil
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) ListByContract(_ context.Context, contractID string) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.ContractID != nil && *p.ContractID == contractID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumByContract(_ context.Context, contractID string) (decimal.Decimal, int64, *time.Time, error) {
	total := decimal.Zero
	var count int64
	var last *time.Time
	for _, p := range r.payments {
		if p.ContractID == nil || *p.ContractID != contractID {
			continue
		}
		total = total.Add(p.Amount)
		count++
		created := p.CreatedAt
		if last == nil || created.After(*last) {
			last = &created
		}
	}
	return total, count, last, nil
}

type fakeQuoteRepo struct {
	quotes map[string]*domain.Quote
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[string]*domain.Quote{}}
}

func (r *fakeQuoteRepo) GetByID(_ context.Context, id string) (*domain.Quote, error) {
	return r.quotes[id], nil
}

func (r *fakeQuoteRepo) Save(_ context.Context, q *domain.Quote) error {
	r.quotes[q.QuoteID] = q
	return nil
}

type fakeCollectionRepo struct {
	summaries map[string]*domain.CollectionSummary
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{summaries: map[string]*domain.CollectionSummary{}}
}

func (r *fakeCollectionRepo) Upsert(_ context.Context, s *domain.CollectionSummary) error {
	r.summaries[s.ContractID] = s
	return nil
}

func (r *fakeCollectionRepo) GetByContract(_ context.Context, contractID string) (*domain.CollectionSummary, error) {
	return r.summaries[contractID], nil
}

type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

func (p *fakePublisher) PublishInTx(_ context.Context, topic, key string, event any) error {
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type billingFixture struct {
	contracts   *fakeContractRepo
	schedule    *fakeScheduleRepo
	invoices    *fakeInvoiceRepo
	payments    *fakePaymentRepo
	quotes      *fakeQuoteRepo
	collections *fakeCollectionRepo
	publisher   *fakePublisher

	allocator *PaymentService
	generator *ContractService
	queries   *BillingQueryService
	projector *CollectionProjectionService
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		contracts:   newFakeContractRepo(),
		schedule:    newFakeScheduleRepo(),
		invoices:    newFakeInvoiceRepo(),
		payments:    &fakePaymentRepo{},
		quotes:      newFakeQuoteRepo(),
		collections: newFakeCollectionRepo(),
		publisher:   &fakePublisher{},
	}
	txm := fakeTxManager{}
	logger := testLogger()
	f.allocator = NewPaymentService(f.contracts, f.schedule, f.invoices, f.payments, f.quotes, f.publisher, txm, logger)
	f.generator = NewContractService(f.contracts, f.schedule, f.invoices, f.quotes, txm, logger)
	f.queries = NewBillingQueryService(f.contracts, f.schedule, f.collections)
	f.projector = NewCollectionProjectionService(f.payments, f.collections, logger)
	return f
}
