package vo

import (
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"

	"github.com/google/uuid"
)

// UploadReceipt 是一次上传提交的终态成功结果。
// 失败路径不产生 Receipt，而是携带错误原因的 kratos error。
type UploadReceipt struct {
	ContentID       uuid.UUID      `json:"content_id"`
	ObjectKey       string         `json:"object_key"`
	FileURL         string         `json:"file_url"`
	ThumbnailURL    *string        `json:"thumbnail_url,omitempty"`
	ContentType     po.ContentType `json:"content_type"`
	DurationSeconds *int32         `json:"duration_seconds,omitempty"`
	FileSizeBytes   int64          `json:"file_size_bytes"`
	CreatedAt       time.Time      `json:"created_at"`
}
