package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bookwall/pkg/cache"
)

// NewInvalidationHandler 返回一个把借阅事件转为缓存失效的 MessageHandler。
// 其他实例写入借阅后，本实例收到事件时删除对应的借阅记录键和
// 读者未归还集合键，下一次读取会回源重建。
// 删除是幂等的，重复投递同一事件无副作用。
func NewInvalidationHandler(store cache.Store, logger *zap.Logger) MessageHandler {
	log := logger.Named("cache_invalidator")
	return func(ctx context.Context, delivery amqp.Delivery) error {
		var event LendingEvent
		if err := json.Unmarshal(delivery.Body, &event); err != nil {
			// 无法解析的消息不可重试，记录后按处理失败丢弃
			return fmt.Errorf("借阅事件反序列化失败: %w", err)
		}

		keys := []string{
			"lending:" + event.LendingNumber,
			"lending:reader:" + event.ReaderNumber,
		}
		if err := store.Del(ctx, keys...); err != nil {
			return fmt.Errorf("缓存失效删除失败: %w", err)
		}

		log.Debug("已按借阅事件失效缓存",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.Strings("keys", keys),
		)
		return nil
	}
}
