package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepository 提供 Outbox 事件的拉取与状态推进能力，供发布任务使用。
type OutboxRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewOutboxRepository 构造 OutboxRepository。
func NewOutboxRepository(pool *pgxpool.Pool, logger log.Logger) *OutboxRepository {
	return &OutboxRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// FetchDue 拉取一批到期待发布的事件，按可用时间先进先出。
// 每个服务实例运行单个发布任务；重复投递由下游按 event_id 幂等处理。
func (r *OutboxRepository) FetchDue(ctx context.Context, batchSize int32, now time.Time) ([]*po.OutboxEvent, error) {
	const query = `
		SELECT event_id, aggregate_type, aggregate_id, event_type,
		       payload, status, attempts, available_at, published_at, last_error, created_at
		FROM catalog.outbox_events
		WHERE status = 'pending' AND available_at <= $1
		ORDER BY available_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now.UTC(), batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch due outbox events: %w", err)
	}
	defer rows.Close()

	var events []*po.OutboxEvent
	for rows.Next() {
		var e po.OutboxEvent
		if err := rows.Scan(
			&e.EventID,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Payload,
			&e.Status,
			&e.Attempts,
			&e.AvailableAt,
			&e.PublishedAt,
			&e.LastError,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return events, nil
}

// MarkPublished 将事件标记为已发布。
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID uuid.UUID, publishedAt time.Time) error {
	const query = `
		UPDATE catalog.outbox_events
		SET status = 'published', published_at = $2, last_error = NULL
		WHERE event_id = $1
	`
	if _, err := r.pool.Exec(ctx, query, eventID, publishedAt.UTC()); err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	return nil
}

// MarkRetry 记录一次失败并按退避时间推迟下次尝试。
func (r *OutboxRepository) MarkRetry(ctx context.Context, eventID uuid.UUID, nextAttempt time.Time, lastError string) error {
	const query = `
		UPDATE catalog.outbox_events
		SET attempts = attempts + 1, available_at = $2, last_error = $3
		WHERE event_id = $1
	`
	if _, err := r.pool.Exec(ctx, query, eventID, nextAttempt.UTC(), truncateError(lastError)); err != nil {
		return fmt.Errorf("mark outbox event retry: %w", err)
	}
	return nil
}

// MarkFailed 在超过最大尝试次数后将事件置为终态失败。
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, lastError string) error {
	const query = `
		UPDATE catalog.outbox_events
		SET status = 'failed', attempts = attempts + 1, last_error = $2
		WHERE event_id = $1
	`
	if _, err := r.pool.Exec(ctx, query, eventID, truncateError(lastError)); err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}
	r.log.WithContext(ctx).Warnf("outbox event moved to failed: event_id=%s", eventID)
	return nil
}

// truncateError 截断过长的错误文本，避免撑爆 last_error 列。
func truncateError(msg string) string {
	const maxLen = 1024
	if len(msg) > maxLen {
		return msg[:maxLen]
	}
	return msg
}
