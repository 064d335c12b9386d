// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// ContentType 表示内容的分类。
type ContentType string

// 内容分类常量定义
const (
	ContentTypeVideo ContentType = "video" // 时长超过 60 秒的视频
	ContentTypeImage ContentType = "image" // 静态图片
	ContentTypeShort ContentType = "short" // 时长不超过 60 秒的短视频
)

// Valid 判断分类取值是否在封闭枚举内。
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeVideo, ContentTypeImage, ContentTypeShort:
		return true
	}
	return false
}

// HasDuration 报告该分类是否携带时长元数据。
// 不变式：duration_seconds 与 thumbnail_url 仅在 video/short 上出现。
func (t ContentType) HasDuration() bool {
	return t == ContentTypeVideo || t == ContentTypeShort
}

// Content 表示 catalog.content 表的数据库实体。
// 一条记录描述一个已上传的媒体项：对象存储 URL、派生元数据与互动计数。
type Content struct {
	ContentID       uuid.UUID   `db:"content_id"`       // 主键（UUID v4）
	OwnerID         uuid.UUID   `db:"owner_id"`         // 上传者用户 ID
	Title           string      `db:"title"`            // 标题（必填）
	Description     *string     `db:"description"`      // 描述（可选）
	FileURL         string      `db:"file_url"`         // 对象存储的公开访问 URL
	ThumbnailURL    *string     `db:"thumbnail_url"`    // 缩略图 URL（仅 video/short）
	ContentType     ContentType `db:"content_type"`     // 分类
	DurationSeconds *int32      `db:"duration_seconds"` // 时长（秒，向下取整，仅 video/short）
	FileSizeBytes   int64       `db:"file_size_bytes"`  // 原始文件大小（字节）
	ViewsCount      int64       `db:"views_count"`      // 播放计数（插入时为 0）
	LikesCount      int64       `db:"likes_count"`      // 点赞计数（插入时为 0）
	CommentsCount   int64       `db:"comments_count"`   // 评论计数（插入时为 0）
	CreatedAt       time.Time   `db:"created_at"`       // 记录创建时间
	UpdatedAt       time.Time   `db:"updated_at"`       // 最近更新时间
}
