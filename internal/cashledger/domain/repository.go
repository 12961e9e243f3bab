package domain

import (
	"context"
	"time"
)

// TransactionManager 事务边界
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MovementRepository 流水仓储。只有插入与查询：台账不可变。
type MovementRepository interface {
	Append(ctx context.Context, m *CashMovement) error
	// ListRange 返回 [from, to] 内该租户的流水，按时间升序
	ListRange(ctx context.Context, tenantID string, from, to time.Time) ([]CashMovement, error)
	// ListStructuralRange 仅返回 OPENING/CLOSING 流水，按时间升序。
	// 在事务内配合锁使用，封死先读状态后写入的开合竞态。
	ListStructuralRange(ctx context.Context, tenantID string, from, to time.Time) ([]CashMovement, error)
}

// SummaryCache 当日汇总读缓存。任何错误都只记日志回落 MySQL，不阻塞业务。
type SummaryCache interface {
	Get(ctx context.Context, tenantID string, day string) (*DaySummary, error)
	Set(ctx context.Context, tenantID string, day string, s DaySummary) error
	Invalidate(ctx context.Context, tenantID string, day string) error
}

// EventPublisher 集成事件发布（Outbox 模式）
type EventPublisher interface {
	PublishInTx(ctx context.Context, topic, key string, event any) error
}
