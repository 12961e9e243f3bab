package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionManager 事务边界。实现负责把事务句柄放进 Context 供各仓储取用。
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ContractRepository 合同仓储
type ContractRepository interface {
	Save(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, contractID string) (*Contract, error)
	// GetWithLock 以 SELECT ... FOR UPDATE 锁定合同行，须在事务内调用
	GetWithLock(ctx context.Context, contractID string) (*Contract, error)
	GetByQuoteID(ctx context.Context, quoteID string) (*Contract, error)
}

// ScheduleRepository 分期计划仓储
type ScheduleRepository interface {
	SaveAll(ctx context.Context, rows []*CreditScheduleInstallment) error
	// ListByContract 按到期日升序返回合同全部分期
	ListByContract(ctx context.Context, contractID string) ([]*CreditScheduleInstallment, error)
}

// InvoiceRepository 发票仓储
type InvoiceRepository interface {
	Save(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uint) (*Invoice, error)
	// GetWithLock 锁定发票行，须在事务内调用
	GetWithLock(ctx context.Context, id uint) (*Invoice, error)
	// Count 发票总数，用于收据流水号
	Count(ctx context.Context) (int64, error)
}

// PaymentRepository 支付仓储
type PaymentRepository interface {
	Save(ctx context.Context, p *Payment) error
	ListByContract(ctx context.Context, contractID string) ([]*Payment, error)
	// SumByContract 合同累计回款、笔数与最后回款时间（投影刷新用）
	SumByContract(ctx context.Context, contractID string) (total decimal.Decimal, count int64, last *time.Time, err error)
}

// QuoteRepository 报价单仓储（只消费）
type QuoteRepository interface {
	GetByID(ctx context.Context, quoteID string) (*Quote, error)
	Save(ctx context.Context, q *Quote) error
}

// CollectionSummaryRepository 回款读模型仓储
type CollectionSummaryRepository interface {
	Upsert(ctx context.Context, s *CollectionSummary) error
	GetByContract(ctx context.Context, contractID string) (*CollectionSummary, error)
}

// EventPublisher 集成事件发布（Outbox 模式）。
// PublishInTx 复用 Context 中的事务句柄，保证事件与业务写原子落库。
type EventPublisher interface {
	PublishInTx(ctx context.Context, topic, key string, event any) error
}
