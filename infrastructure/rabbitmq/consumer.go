package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler 处理一条收到的消息。
// 返回非 nil 错误时消息被 Nack（不重入队列）。
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// Consumer 订阅借阅事件队列并把消息交给 handler 处理。
type Consumer struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queueName    string
	consumerTag  string
	handler      MessageHandler
	logger       *zap.Logger
	done         chan struct{} // Shutdown 关闭它，通知消费循环退出
	closed       chan struct{} // 消费循环在任何退出路径上都会关闭它
	shutdownOnce sync.Once
}

// ConsumerOptions 配置 Consumer 的交换机和队列绑定。
type ConsumerOptions struct {
	ExchangeName string
	QueueName    string
	RoutingKeys  []string
}

// NewConsumer 创建一个 Consumer，声明并绑定队列，随即开始消费。
func NewConsumer(amqpURL string, handler MessageHandler, opts ConsumerOptions, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到 RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("无法打开 RabbitMQ 通道: %w", err)
	}

	err = ch.ExchangeDeclare(opts.ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("无法声明 RabbitMQ 交换机 '%s': %w", opts.ExchangeName, err)
	}

	q, err := ch.QueueDeclare(opts.QueueName, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("无法声明 RabbitMQ 队列 '%s': %w", opts.QueueName, err)
	}

	for _, key := range opts.RoutingKeys {
		if err := ch.QueueBind(q.Name, key, opts.ExchangeName, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("无法把队列 '%s' 绑定到交换机 '%s' (key=%s): %w",
				q.Name, opts.ExchangeName, key, err)
		}
	}

	consumer := &Consumer{
		conn:        conn,
		channel:     ch,
		queueName:   q.Name,
		consumerTag: fmt.Sprintf("consumer-%s-%d", q.Name, time.Now().UnixNano()),
		handler:     handler,
		logger:      logger.Named("rabbitmq_consumer").With(zap.String("queue", q.Name)),
		done:        make(chan struct{}),
		closed:      make(chan struct{}),
	}

	go consumer.startConsuming()
	logger.Info("RabbitMQ Consumer 已启动", zap.String("queue", q.Name))
	return consumer, nil
}

func (c *Consumer) startConsuming() {
	// 无论消费循环怎么退出，closed 都必须关闭，Shutdown 靠它判断循环已经结束
	defer close(c.closed)

	deliveries, err := c.channel.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack 关闭，处理成功后手动 Ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		c.logger.Error("启动消费者失败", zap.Error(err))
		return
	}
	c.consumeLoop(deliveries)
}

func (c *Consumer) consumeLoop(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Info("消息通道已关闭，消费者停止")
				return
			}
			ctx := context.Background()
			if err := c.handler(ctx, delivery); err != nil {
				c.logger.Error("消息处理失败，发送 Nack", zap.Error(err))
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					c.logger.Error("发送 Nack 失败", zap.Error(nackErr))
				}
				continue
			}
			if ackErr := delivery.Ack(false); ackErr != nil {
				c.logger.Error("发送 Ack 失败", zap.Error(ackErr))
			}
		case <-c.done:
			return
		}
	}
}

// Shutdown 取消消费并关闭通道和连接。
func (c *Consumer) Shutdown() error {
	if c.channel == nil {
		return fmt.Errorf("消费者通道为空，无法关闭")
	}

	err := c.channel.Cancel(c.consumerTag, false)
	if err != nil {
		c.logger.Error("取消 RabbitMQ 消费者失败", zap.Error(err))
	}

	c.shutdownOnce.Do(func() { close(c.done) })

	select {
	case <-c.closed:
	case <-time.After(10 * time.Second):
		c.logger.Warn("等待消费循环退出超时")
	}

	if err := c.channel.Close(); err != nil {
		c.logger.Error("关闭 RabbitMQ 通道失败", zap.Error(err))
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("关闭 RabbitMQ 连接失败", zap.Error(err))
		}
	}

	c.logger.Info("RabbitMQ Consumer 已关闭")
	return err
}
