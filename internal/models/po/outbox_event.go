package po

import (
	"time"

	"github.com/google/uuid"
)

// OutboxStatus 表示 Outbox 事件的投递状态。
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxEvent 描述 catalog.outbox_events 表中的一条待发布事件。
// 事件与业务写入处于同一事务，由发布任务异步投递到 Pub/Sub。
type OutboxEvent struct {
	EventID       uuid.UUID    `db:"event_id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   uuid.UUID    `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	Attempts      int32        `db:"attempts"`
	AvailableAt   time.Time    `db:"available_at"`
	PublishedAt   *time.Time   `db:"published_at"`
	LastError     *string      `db:"last_error"`
	CreatedAt     time.Time    `db:"created_at"`
}
