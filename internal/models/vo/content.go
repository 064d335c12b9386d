// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Views 层转换为 API 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"

	"github.com/google/uuid"
)

// ContentDetail 封装内容条目的展示视图，仅包含前端需要的核心字段。
type ContentDetail struct {
	ContentID       uuid.UUID      `json:"content_id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	Title           string         `json:"title"`
	Description     *string        `json:"description,omitempty"`
	FileURL         string         `json:"file_url"`
	ThumbnailURL    *string        `json:"thumbnail_url,omitempty"`
	ContentType     po.ContentType `json:"content_type"`
	DurationSeconds *int32         `json:"duration_seconds,omitempty"`
	FileSizeBytes   int64          `json:"file_size_bytes"`
	ViewsCount      int64          `json:"views_count"`
	LikesCount      int64          `json:"likes_count"`
	CommentsCount   int64          `json:"comments_count"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewContentDetail 从持久化实体构造 VO。
func NewContentDetail(c *po.Content) *ContentDetail {
	if c == nil {
		return nil
	}
	return &ContentDetail{
		ContentID:       c.ContentID,
		OwnerID:         c.OwnerID,
		Title:           c.Title,
		Description:     c.Description,
		FileURL:         c.FileURL,
		ThumbnailURL:    c.ThumbnailURL,
		ContentType:     c.ContentType,
		DurationSeconds: c.DurationSeconds,
		FileSizeBytes:   c.FileSizeBytes,
		ViewsCount:      c.ViewsCount,
		LikesCount:      c.LikesCount,
		CommentsCount:   c.CommentsCount,
		CreatedAt:       c.CreatedAt,
	}
}

// NewContentList 批量转换内容实体。
func NewContentList(items []*po.Content) []*ContentDetail {
	if len(items) == 0 {
		return nil
	}
	out := make([]*ContentDetail, 0, len(items))
	for _, item := range items {
		out = append(out, NewContentDetail(item))
	}
	return out
}
