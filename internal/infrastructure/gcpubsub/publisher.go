// Package gcpubsub 封装 Google Cloud Pub/Sub 发布能力。
package gcpubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/go-kratos/kratos/v2/log"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

// Message 是待发布的领域事件消息。
type Message struct {
	Data        []byte
	Attributes  map[string]string
	OrderingKey string
}

// Publisher 发布消息并返回服务端消息 ID。
type Publisher interface {
	Publish(ctx context.Context, msg Message) (string, error)
}

// NewPublisher 构造 Pub/Sub 发布器，返回 Wire cleanup。
// 未配置 TopicID 时退化为 no-op 发布器（本地开发场景）。
func NewPublisher(ctx context.Context, cfg loader.PubSub, logger log.Logger) (Publisher, func(), error) {
	helper := log.NewHelper(logger)

	if cfg.TopicID == "" {
		helper.Warn("pubsub topic not configured, events will be dropped after commit")
		return noopPublisher{helper: helper}, func() {}, nil
	}
	if cfg.ProjectID == "" {
		return nil, nil, fmt.Errorf("pubsub project id is required when topic is set")
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(cfg.TopicID)
	topic.EnableMessageOrdering = cfg.EnableOrdering

	cleanup := func() {
		helper.Info("closing pubsub publisher")
		topic.Stop()
		_ = client.Close()
	}
	return &topicPublisher{topic: topic, ordering: cfg.EnableOrdering}, cleanup, nil
}

// topicPublisher 将消息发布到固定 topic，并等待服务端确认。
type topicPublisher struct {
	topic    *pubsub.Topic
	ordering bool
}

func (p *topicPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	// 客户端拒绝在未开启排序的 topic 上携带 OrderingKey。
	orderingKey := msg.OrderingKey
	if !p.ordering {
		orderingKey = ""
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:        msg.Data,
		Attributes:  msg.Attributes,
		OrderingKey: orderingKey,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", p.topic.ID(), err)
	}
	return id, nil
}

// noopPublisher 丢弃消息，仅记录调试日志。
type noopPublisher struct {
	helper *log.Helper
}

func (p noopPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	p.helper.WithContext(ctx).Debugf("noop publish: %d bytes, attrs=%d", len(msg.Data), len(msg.Attributes))
	return "", nil
}
