// Package messaging 基于 Outbox 模式的事件发布实现
package messaging

import (
	"context"

	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"gorm.io/gorm"
)

type outboxPublisher struct {
	manager *outbox.Manager
}

// NewOutboxPublisher 创建 Outbox 事件发布者
func NewOutboxPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &outboxPublisher{manager: manager}
}

// PublishInTx 在事务中发布事件，复用 Context 中的事务句柄
func (p *outboxPublisher) PublishInTx(ctx context.Context, topic, key string, event any) error {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return p.manager.PublishInTx(ctx, tx, topic, key, event)
	}
	return p.manager.PublishInTx(ctx, p.manager.DB(), topic, key, event)
}
