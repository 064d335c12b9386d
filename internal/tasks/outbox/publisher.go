// Package outbox 实现事务性 Outbox 的后台发布任务。
// 目录写入与事件落库同事务完成后，由该任务把 pending 事件
// 逐条推送到 Pub/Sub，保证 content.added 至少送达一次。
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/streamspace/streamspace-services-content/internal/infrastructure/gcpubsub"
	"github.com/streamspace/streamspace-services-content/internal/models/events"
	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/repositories"
)

const (
	defaultBatchSize      = int32(100)
	defaultTickInterval   = 500 * time.Millisecond
	defaultInitialBackoff = 2 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
	defaultMaxAttempts    = int32(10)
	defaultPublishTimeout = 10 * time.Second
	defaultWorkers        = 1
)

// Config 描述发布任务的节奏参数。
type Config struct {
	BatchSize      int32
	TickInterval   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int32
	PublishTimeout time.Duration
	Workers        int
}

// sanitizeConfig 为缺省字段填充默认值。
func sanitizeConfig(cfg Config) Config {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return cfg
}

// PublisherTask 周期性拉取到期事件并发布。实现 kratos transport.Server，
// 随应用一起启动与优雅退出。
type PublisherTask struct {
	repo  *repositories.OutboxRepository
	pub   gcpubsub.Publisher
	cfg   Config
	log   *log.Helper
	clock func() time.Time

	publishedCounter metric.Int64Counter
	failedCounter    metric.Int64Counter

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPublisherTask 构造 Outbox 发布任务。
func NewPublisherTask(
	repo *repositories.OutboxRepository,
	pub gcpubsub.Publisher,
	cfg Config,
	logger log.Logger,
	meter metric.Meter,
) (*PublisherTask, error) {
	if repo == nil {
		return nil, errors.New("outbox publisher: repository is required")
	}
	if pub == nil {
		return nil, errors.New("outbox publisher: pubsub publisher is required")
	}

	t := &PublisherTask{
		repo:  repo,
		pub:   pub,
		cfg:   sanitizeConfig(cfg),
		log:   log.NewHelper(logger),
		clock: time.Now,
	}

	var err error
	if t.publishedCounter, err = meter.Int64Counter("outbox_events_published_total"); err != nil {
		return nil, err
	}
	if t.failedCounter, err = meter.Int64Counter("outbox_events_failed_total"); err != nil {
		return nil, err
	}
	return t, nil
}

// Start 实现 transport.Server，阻塞运行发布循环直到 Stop。
func (t *PublisherTask) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	defer close(t.done)

	t.log.Infof("outbox publisher started: batch=%d tick=%v", t.cfg.BatchSize, t.cfg.TickInterval)
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			t.log.Info("outbox publisher stopped")
			return nil
		case <-ticker.C:
			if err := t.drainOnce(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				t.log.Errorf("outbox drain failed: %v", err)
			}
		}
	}
}

// Stop 实现 transport.Server，通知循环退出并等待收尾。
func (t *PublisherTask) Stop(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.done != nil {
		select {
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// drainOnce 拉取一批到期事件并逐条发布。
// 批内串行保证同一聚合的事件按 available_at 顺序送达。
func (t *PublisherTask) drainOnce(ctx context.Context) error {
	due, err := t.repo.FetchDue(ctx, t.cfg.BatchSize, t.clock())
	if err != nil {
		return err
	}
	for _, evt := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.publishOne(ctx, evt)
	}
	return nil
}

// publishOne 发布单个事件并推进其状态。
func (t *PublisherTask) publishOne(ctx context.Context, evt *po.OutboxEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, t.cfg.PublishTimeout)
	defer cancel()

	attrs := events.BuildAttributes(evt.EventID, evt.EventType, evt.AggregateID, evt.CreatedAt, events.TraceIDFromContext(ctx))
	msgID, err := t.pub.Publish(pubCtx, gcpubsub.Message{
		Data:        evt.Payload,
		Attributes:  attrs,
		OrderingKey: evt.AggregateID.String(),
	})
	if err != nil {
		t.handlePublishError(ctx, evt, err)
		return
	}

	if err := t.repo.MarkPublished(ctx, evt.EventID, t.clock()); err != nil {
		// 标记失败会导致重复投递，由下游按 event_id 幂等兜底。
		t.log.Errorf("mark published failed: event_id=%s err=%v", evt.EventID, err)
		return
	}
	t.publishedCounter.Add(ctx, 1)
	t.log.Debugf("outbox event published: event_id=%s type=%s msg_id=%s", evt.EventID, evt.EventType, msgID)
}

// handlePublishError 根据累计尝试次数选择重试或终态失败。
func (t *PublisherTask) handlePublishError(ctx context.Context, evt *po.OutboxEvent, cause error) {
	t.failedCounter.Add(ctx, 1)

	if evt.Attempts+1 >= t.cfg.MaxAttempts {
		if err := t.repo.MarkFailed(ctx, evt.EventID, cause.Error()); err != nil {
			t.log.Errorf("mark failed failed: event_id=%s err=%v", evt.EventID, err)
		}
		return
	}

	next := t.clock().Add(t.backoffDuration(evt.Attempts))
	if err := t.repo.MarkRetry(ctx, evt.EventID, next, cause.Error()); err != nil {
		t.log.Errorf("mark retry failed: event_id=%s err=%v", evt.EventID, err)
		return
	}
	t.log.Warnf("outbox publish failed, scheduled retry: event_id=%s attempts=%d next=%v err=%v",
		evt.EventID, evt.Attempts+1, next, cause)
}

// backoffDuration 计算指数退避时长：initial * 2^attempts，封顶 MaxBackoff。
func (t *PublisherTask) backoffDuration(attempts int32) time.Duration {
	backoff := t.cfg.InitialBackoff
	for i := int32(0); i < attempts; i++ {
		backoff *= 2
		if backoff >= t.cfg.MaxBackoff {
			return t.cfg.MaxBackoff
		}
	}
	if backoff > t.cfg.MaxBackoff {
		return t.cfg.MaxBackoff
	}
	return backoff
}
