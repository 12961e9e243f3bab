// Package mysql 现金台账仓储实现。只有插入与区间查询：流水不可变。
package mysql

import (
	"context"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

// GormMovementRepository 流水仓储
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository 创建流水仓储
func NewGormMovementRepository(db *gorm.DB) domain.MovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

func (r *GormMovementRepository) Append(ctx context.Context, m *domain.CashMovement) error {
	return r.getDB(ctx).WithContext(ctx).Create(m).Error
}

func (r *GormMovementRepository) ListRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.CashMovement, error) {
	var movs []domain.CashMovement
	err := r.getDB(ctx).WithContext(ctx).
		Where("tenant_id = ? AND date BETWEEN ? AND ?", tenantID, from, to).
		Order("date ASC").
		Find(&movs).Error
	if err != nil {
		return nil, err
	}
	return movs, nil
}

func (r *GormMovementRepository) ListStructuralRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.CashMovement, error) {
	var movs []domain.CashMovement
	err := r.getDB(ctx).WithContext(ctx).
		Where("tenant_id = ? AND date BETWEEN ? AND ? AND type IN ?",
			tenantID, from, to,
			[]domain.MovementType{domain.MovementTypeOpening, domain.MovementTypeClosing}).
		Order("date ASC").
		Find(&movs).Error
	if err != nil {
		return nil, err
	}
	return movs, nil
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
