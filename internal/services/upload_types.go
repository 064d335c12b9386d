package services

import (
	"context"
	"io"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 错误原因枚举（封闭集合）。每个阶段边界只允许携带以下原因之一，
// 不使用动态错误对象，便于调用方据此决策。
const (
	// ReasonNoFile 表示 Intake 阶段未提供文件或文件为空。
	ReasonNoFile = "NO_FILE"
	// ReasonUnsupportedMediaType 表示 MIME 类型不在 image/video 范围内。
	ReasonUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	// ReasonMetadataExtraction 表示媒体元数据探测失败（损坏或不可读）。
	ReasonMetadataExtraction = "METADATA_EXTRACTION_FAILED"
	// ReasonStorageFailure 表示对象存储写入失败，目录未被写入。
	ReasonStorageFailure = "STORAGE_FAILURE"
	// ReasonCatalogWriteFailed 表示对象上传成功后目录写入失败，
	// 错误 metadata 中携带 object_key / file_url，孤儿对象由此可观测。
	ReasonCatalogWriteFailed = "CATALOG_WRITE_FAILED"
	// ReasonContentNotFound 表示查询的内容不存在。
	ReasonContentNotFound = "CONTENT_NOT_FOUND"
	// ReasonQueryFailed 表示目录读路径查询失败。
	ReasonQueryFailed = "QUERY_CONTENT_FAILED"
	// ReasonUploadInvalid 表示提交参数非法（标题为空、重复消费等）。
	ReasonUploadInvalid = "UPLOAD_INVALID"
)

// ErrNoFile 构造 Intake 失败错误。
func ErrNoFile(message string) *kerrors.Error {
	return kerrors.BadRequest(ReasonNoFile, message)
}

// ErrUnsupportedMediaType 构造分类失败错误。
func ErrUnsupportedMediaType(mimeType string) *kerrors.Error {
	return kerrors.BadRequest(ReasonUnsupportedMediaType, "unsupported media type: "+mimeType)
}

// ErrMetadataExtraction 构造元数据探测失败错误。
func ErrMetadataExtraction(cause error) *kerrors.Error {
	return kerrors.New(422, ReasonMetadataExtraction, "media metadata extraction failed").WithCause(cause)
}

// ErrStorage 构造对象存储失败错误。
func ErrStorage(cause error) *kerrors.Error {
	return kerrors.ServiceUnavailable(ReasonStorageFailure, "object upload failed").WithCause(cause)
}

// ErrCatalogWrite 构造目录写入失败错误。对象已落盘但无目录记录，
// object_key 指向孤儿对象，调用方可据此重试目录写入或人工清理。
func ErrCatalogWrite(objectKey, fileURL string, cause error) *kerrors.Error {
	return kerrors.InternalServer(ReasonCatalogWriteFailed, "catalog insert failed after object upload").
		WithCause(cause).
		WithMetadata(map[string]string{
			"object_key": objectKey,
			"file_url":   fileURL,
		})
}

// ErrContentNotFound 是内容不存在时返回的哨兵错误。
var ErrContentNotFound = kerrors.NotFound(ReasonContentNotFound, "content not found")

// IsReason 判断错误是否携带指定原因。
func IsReason(err error, reason string) bool {
	return kerrors.Reason(err) == reason
}

// ProgressFunc 接收对象上传的字节进度回调（loaded/total）。
// total 为 0 时表示大小未知，调用方不应换算分数。
type ProgressFunc func(loaded, total int64)

// PutInput 描述一次对象存储写入。
type PutInput struct {
	Key         string       // 对象键，形如 {owner_id}/{unix_milli}{ext}
	ContentType string       // 对象的 Content-Type
	Body        io.Reader    // 对象内容
	Size        int64        // 预期字节数，用于进度分母
	OnProgress  ProgressFunc // 可为 nil
}

// PutResult 是对象存储写入成功后的结果。
type PutResult struct {
	Key          string
	PublicURL    string
	BytesWritten int64
}

// ObjectStore 抽象对象存储写入能力（GCS 实现见 infrastructure/objectstore）。
type ObjectStore interface {
	Put(ctx context.Context, in PutInput) (*PutResult, error)
}

// MediaProber 抽象媒体元数据探测能力（ffprobe/ffmpeg 实现见 infrastructure/mediaprobe）。
type MediaProber interface {
	// Duration 返回媒体文件的精确时长。
	Duration(ctx context.Context, path string) (time.Duration, error)
	// ExtractFrame 截取视频首帧写入 framePath（JPEG）。
	ExtractFrame(ctx context.Context, videoPath, framePath string) error
}

// UploadConfig 聚合上传流水线的可调参数。
type UploadConfig struct {
	// ShortMaxDuration 是 short 分类的时长上限，默认 60 秒。
	ShortMaxDuration time.Duration
	// MaxFileSizeBytes 是单个文件的大小上限，0 表示不限制。
	MaxFileSizeBytes int64
	// PlaceholderThumbnailURL 在无法派生缩略图时使用。
	PlaceholderThumbnailURL string
}

func (c UploadConfig) shortMax() time.Duration {
	if c.ShortMaxDuration <= 0 {
		return 60 * time.Second
	}
	return c.ShortMaxDuration
}
