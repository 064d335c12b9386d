// Package events 提供领域事件构造与元数据辅助函数，统一事件命名与属性。
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// AggregateTypeContent 标识内容聚合类型，供 Outbox attributes 使用。
	AggregateTypeContent = "content"
	// TypeContentAdded 是目录新增内容时发布的事件类型。
	// 读端（Feed）订阅该事件以刷新列表，替代整页重载。
	TypeContentAdded = "content.added"
	// SchemaVersionV1 描述事件载荷的当前 schema 版本。
	SchemaVersionV1 = "v1"
)

var (
	// ErrNilContent 在构建事件时内容实体为空。
	ErrNilContent = errors.New("event builder: content is nil")
	// ErrInvalidEventID 表示未提供合法的事件 ID。
	ErrInvalidEventID = errors.New("event builder: event id is required")
)

// ContentAdded 描述新内容入库事件的业务载荷。
type ContentAdded struct {
	ContentID       uuid.UUID      `json:"content_id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	Title           string         `json:"title"`
	ContentType     po.ContentType `json:"content_type"`
	FileURL         string         `json:"file_url"`
	ThumbnailURL    *string        `json:"thumbnail_url,omitempty"`
	DurationSeconds *int32         `json:"duration_seconds,omitempty"`
	FileSizeBytes   int64          `json:"file_size_bytes"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

// NewContentAdded 基于持久化实体构建 content.added 事件载荷。
func NewContentAdded(c *po.Content, occurredAt time.Time) (*ContentAdded, error) {
	if c == nil {
		return nil, ErrNilContent
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &ContentAdded{
		ContentID:       c.ContentID,
		OwnerID:         c.OwnerID,
		Title:           c.Title,
		ContentType:     c.ContentType,
		FileURL:         c.FileURL,
		ThumbnailURL:    c.ThumbnailURL,
		DurationSeconds: c.DurationSeconds,
		FileSizeBytes:   c.FileSizeBytes,
		OccurredAt:      occurredAt.UTC(),
	}, nil
}

// Marshal 将载荷编码为 JSON，供 outbox.payload 字段使用。
func (e *ContentAdded) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// BuildAttributes 构造符合 Pub/Sub 约定的 message attributes。
func BuildAttributes(eventID uuid.UUID, eventType string, aggregateID uuid.UUID, occurredAt time.Time, traceID string) map[string]string {
	attrs := map[string]string{
		"event_id":       eventID.String(),
		"event_type":     eventType,
		"aggregate_id":   aggregateID.String(),
		"aggregate_type": AggregateTypeContent,
		"occurred_at":    occurredAt.UTC().Format(time.RFC3339),
		"schema_version": SchemaVersionV1,
	}
	if traceID != "" {
		attrs["trace_id"] = traceID
	}
	return attrs
}

// TraceIDFromContext 提取 OTel Trace ID，若不存在返回空字符串。
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() || !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}
