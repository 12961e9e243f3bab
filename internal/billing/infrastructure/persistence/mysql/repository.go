// Package mysql 账单核心仓储实现
// 统一通过 contextx.GetTx 复用事务句柄；合同与发票提供 FOR UPDATE 行锁，
// 供分配器在整个分配事务期间持有。
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// baseRepository 基础仓储，提供事务支持
type baseRepository struct {
	db *gorm.DB
}

func (r *baseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// TransactionManager 事务管理器
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// Transaction 开启一个新事务并把句柄写入 Context
func (tm *TransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

// --- Contract Repository ---

// GormContractRepository 合同仓储
type GormContractRepository struct {
	baseRepository
}

// NewGormContractRepository 创建合同仓储
func NewGormContractRepository(db *gorm.DB) domain.ContractRepository {
	return &GormContractRepository{baseRepository{db: db}}
}

func (r *GormContractRepository) Save(ctx context.Context, c *domain.Contract) error {
	return r.getDB(ctx).WithContext(ctx).Omit("Schedule").Save(c).Error
}

func (r *GormContractRepository) GetByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	var c domain.Contract
	err := r.getDB(ctx).WithContext(ctx).Where("contract_id = ?", contractID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormContractRepository) GetWithLock(ctx context.Context, contractID string) (*domain.Contract, error) {
	var c domain.Contract
	err := r.getDB(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("contract_id = ?", contractID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormContractRepository) GetByQuoteID(ctx context.Context, quoteID string) (*domain.Contract, error) {
	var c domain.Contract
	err := r.getDB(ctx).WithContext(ctx).Where("quote_id = ?", quoteID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// --- Schedule Repository ---

// GormScheduleRepository 分期计划仓储
type GormScheduleRepository struct {
	baseRepository
}

// NewGormScheduleRepository 创建分期仓储
func NewGormScheduleRepository(db *gorm.DB) domain.ScheduleRepository {
	return &GormScheduleRepository{baseRepository{db: db}}
}

func (r *GormScheduleRepository) SaveAll(ctx context.Context, rows []*domain.CreditScheduleInstallment) error {
	if len(rows) == 0 {
		return nil
	}
	db := r.getDB(ctx).WithContext(ctx)
	for _, row := range rows {
		if err := db.Save(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormScheduleRepository) ListByContract(ctx context.Context, contractID string) ([]*domain.CreditScheduleInstallment, error) {
	var rows []*domain.CreditScheduleInstallment
	err := r.getDB(ctx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// --- Invoice Repository ---

// GormInvoiceRepository 发票仓储
type GormInvoiceRepository struct {
	baseRepository
}

// NewGormInvoiceRepository 创建发票仓储
func NewGormInvoiceRepository(db *gorm.DB) domain.InvoiceRepository {
	return &GormInvoiceRepository{baseRepository{db: db}}
}

func (r *GormInvoiceRepository) Save(ctx context.Context, inv *domain.Invoice) error {
	// 级联保存 Items
	return r.getDB(ctx).WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(inv).Error
}

func (r *GormInvoiceRepository) GetByID(ctx context.Context, id uint) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.getDB(ctx).WithContext(ctx).Preload("Items").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) GetWithLock(ctx context.Context, id uint) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.getDB(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Invoice{}).Count(&count).Error
	return count, err
}

// --- Payment Repository ---

// GormPaymentRepository 支付仓储
type GormPaymentRepository struct {
	baseRepository
}

// NewGormPaymentRepository 创建支付仓储
func NewGormPaymentRepository(db *gorm.DB) domain.PaymentRepository {
	return &GormPaymentRepository{baseRepository{db: db}}
}

func (r *GormPaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	return r.getDB(ctx).WithContext(ctx).Save(p).Error
}

func (r *GormPaymentRepository) ListByContract(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := r.getDB(ctx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormPaymentRepository) SumByContract(ctx context.Context, contractID string) (decimal.Decimal, int64, *time.Time, error) {
	var agg struct {
		Total decimal.Decimal
		Count int64
		Last  *time.Time
	}
	err := r.getDB(ctx).WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count, MAX(created_at) AS last").
		Where("contract_id = ?", contractID).
		Scan(&agg).Error
	if err != nil {
		return decimal.Zero, 0, nil, err
	}
	return agg.Total, agg.Count, agg.Last, nil
}

// --- Quote Repository ---

// GormQuoteRepository 报价单仓储
type GormQuoteRepository struct {
	baseRepository
}

// NewGormQuoteRepository 创建报价单仓储
func NewGormQuoteRepository(db *gorm.DB) domain.QuoteRepository {
	return &GormQuoteRepository{baseRepository{db: db}}
}

func (r *GormQuoteRepository) GetByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	var q domain.Quote
	err := r.getDB(ctx).WithContext(ctx).Where("quote_id = ?", quoteID).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *GormQuoteRepository) Save(ctx context.Context, q *domain.Quote) error {
	return r.getDB(ctx).WithContext(ctx).Save(q).Error
}

// --- Collection Summary Repository ---

// GormCollectionSummaryRepository 回款读模型仓储
type GormCollectionSummaryRepository struct {
	baseRepository
}

// NewGormCollectionSummaryRepository 创建回款读模型仓储
func NewGormCollectionSummaryRepository(db *gorm.DB) domain.CollectionSummaryRepository {
	return &GormCollectionSummaryRepository{baseRepository{db: db}}
}

func (r *GormCollectionSummaryRepository) Upsert(ctx context.Context, s *domain.CollectionSummary) error {
	return r.getDB(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_collected", "payment_count", "last_payment_at", "updated_at"}),
		}).
		Create(s).Error
}

func (r *GormCollectionSummaryRepository) GetByContract(ctx context.Context, contractID string) (*domain.CollectionSummary, error) {
	var s domain.CollectionSummary
	err := r.getDB(ctx).WithContext(ctx).Where("contract_id = ?", contractID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
