package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/events"
	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/models/vo"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ContentRepo 抽象目录写入能力，便于测试。
// Insert 在同一事务内写入内容记录与 content.added Outbox 事件。
type ContentRepo interface {
	Insert(ctx context.Context, c *po.Content, evt *po.OutboxEvent) (*po.Content, error)
}

// UploadService 实现内容上传流水线：
// Intake -> Classification -> Metadata Derivation -> Persistence -> Reporting。
// 阶段严格串行，单次调用内只有一个上传在途；任一阶段失败即中止，
// 不做自动重试，调用方需从 Intake 重新提交。
type UploadService struct {
	repo   ContentRepo
	store  ObjectStore
	prober MediaProber
	cfg    UploadConfig
	log    *log.Helper

	now        func() time.Time
	newEventID func() uuid.UUID
}

// NewUploadService 创建 UploadService。
func NewUploadService(repo ContentRepo, store ObjectStore, prober MediaProber, cfg UploadConfig, logger log.Logger) (*UploadService, error) {
	switch {
	case repo == nil:
		return nil, errors.New("upload service: repository is required")
	case store == nil:
		return nil, errors.New("upload service: object store is required")
	case prober == nil:
		return nil, errors.New("upload service: media prober is required")
	}
	return &UploadService{
		repo:       repo,
		store:      store,
		prober:     prober,
		cfg:        cfg,
		log:        log.NewHelper(logger),
		now:        time.Now,
		newEventID: uuid.New,
	}, nil
}

// Classify 执行分类阶段：按 MIME 前缀判定 image/video，
// video 进一步按探测时长划分 short（时长不超过上限归为 short）。
// 检测结果写回请求的 declaredType（用户覆盖时保持不变），
// 并在标题为空时自动派生标题。同一请求重复分类结果幂等。
func (s *UploadService) Classify(ctx context.Context, req *UploadRequest) (po.ContentType, error) {
	mime := strings.ToLower(strings.TrimSpace(req.File().MIMEType))

	var detected po.ContentType
	switch {
	case strings.HasPrefix(mime, "image/"):
		detected = po.ContentTypeImage
	case strings.HasPrefix(mime, "video/"):
		d, err := s.cachedDuration(ctx, req)
		if err != nil {
			return "", err
		}
		if d <= s.cfg.shortMax() {
			detected = po.ContentTypeShort
		} else {
			detected = po.ContentTypeVideo
		}
	default:
		return "", ErrUnsupportedMediaType(req.File().MIMEType)
	}

	req.autofillTitle()
	if !req.TypeOverridden() {
		req.declaredType = detected
	}
	return detected, nil
}

// Submit 消费一个 UploadRequest 并执行完整流水线。
// onProgress 在对象上传期间收到字节进度，确认完成后恰好收到 (total, total)。
// 成功返回 UploadReceipt；失败返回携带封闭原因枚举的错误。
// 请求无论成败都被消费，重新提交需从 Intake 开始。
func (s *UploadService) Submit(ctx context.Context, req *UploadRequest, onProgress ProgressFunc) (*vo.UploadReceipt, error) {
	if req == nil {
		return nil, ErrNoFile("no file selected")
	}
	if err := req.markConsumed(); err != nil {
		return nil, err
	}

	if s.cfg.MaxFileSizeBytes > 0 && req.File().SizeBytes > s.cfg.MaxFileSizeBytes {
		return nil, kerrors.BadRequest(ReasonUploadInvalid,
			fmt.Sprintf("file size %d exceeds limit %d", req.File().SizeBytes, s.cfg.MaxFileSizeBytes))
	}

	// 分类：用户覆盖优先，自动检测仅作建议。
	detected, err := s.Classify(ctx, req)
	if err != nil {
		return nil, err
	}
	contentType := detected
	if req.TypeOverridden() {
		contentType = req.DeclaredType()
	}
	if req.Title() == "" {
		return nil, kerrors.BadRequest(ReasonUploadInvalid, "title is required")
	}

	// 元数据派生：时长复用分类阶段的缓存测量，缩略图帧先落到本地。
	meta, err := s.deriveMetadata(ctx, req, contentType)
	if err != nil {
		return nil, err
	}
	defer meta.cleanup()

	// 持久化 Step 1：对象上传。失败时目录不被触碰。
	objectKey := s.objectKey(req)
	result, err := s.uploadObject(ctx, req, objectKey, onProgress)
	if err != nil {
		return nil, err
	}

	thumbnailURL := s.uploadThumbnail(ctx, objectKey, meta)

	// 持久化 Step 2+3：目录写入必须发生在对象上传成功之后，
	// 记录引用已解析的公开 URL。
	record := &po.Content{
		ContentID:       uuid.New(),
		OwnerID:         req.OwnerID(),
		Title:           req.Title(),
		Description:     nullableString(req.Description()),
		FileURL:         result.PublicURL,
		ThumbnailURL:    thumbnailURL,
		ContentType:     contentType,
		DurationSeconds: meta.durationSeconds,
		FileSizeBytes:   req.File().SizeBytes,
	}

	evt, err := s.buildOutboxEvent(record)
	if err != nil {
		return nil, ErrCatalogWrite(objectKey, result.PublicURL, err)
	}

	inserted, err := s.repo.Insert(ctx, record, evt)
	if err != nil {
		// 对象已落盘但目录写入失败：留下孤儿对象，错误中携带 object_key。
		s.log.WithContext(ctx).Errorf("catalog insert failed, orphaned object left: key=%s err=%v", objectKey, err)
		return nil, ErrCatalogWrite(objectKey, result.PublicURL, err)
	}

	s.log.WithContext(ctx).Infof("content uploaded: content_id=%s type=%s key=%s size=%d",
		inserted.ContentID, inserted.ContentType, objectKey, inserted.FileSizeBytes)

	return &vo.UploadReceipt{
		ContentID:       inserted.ContentID,
		ObjectKey:       objectKey,
		FileURL:         inserted.FileURL,
		ThumbnailURL:    inserted.ThumbnailURL,
		ContentType:     inserted.ContentType,
		DurationSeconds: inserted.DurationSeconds,
		FileSizeBytes:   inserted.FileSizeBytes,
		CreatedAt:       inserted.CreatedAt,
	}, nil
}

// derivedMetadata 聚合元数据派生阶段的输出。
type derivedMetadata struct {
	durationSeconds *int32
	framePath       string // 本地缩略图帧文件，空表示未派生
}

func (m *derivedMetadata) cleanup() {
	if m.framePath != "" {
		_ = os.Remove(m.framePath)
	}
}

// deriveMetadata 为 video/short 产出整数时长与缩略图帧；image 两者皆无。
// 探测失败返回 MetadataExtraction 错误，流水线不得进入持久化阶段。
func (s *UploadService) deriveMetadata(ctx context.Context, req *UploadRequest, contentType po.ContentType) (*derivedMetadata, error) {
	meta := &derivedMetadata{}
	if !contentType.HasDuration() {
		return meta, nil
	}

	d, err := s.cachedDuration(ctx, req)
	if err != nil {
		return nil, err
	}
	seconds := int32(d / time.Second) // 向下取整
	meta.durationSeconds = &seconds

	framePath, err := s.extractFrame(ctx, req)
	if err != nil {
		// 帧提取属于增强路径：失败记录告警并回退占位图。
		s.log.WithContext(ctx).Warnf("thumbnail frame extraction failed, will use placeholder: %v", err)
	} else {
		meta.framePath = framePath
	}
	return meta, nil
}

// cachedDuration 返回请求上缓存的时长，首次调用触发探测。
// 同一文件只测一次，分类与持久化读到同一个测量值。
func (s *UploadService) cachedDuration(ctx context.Context, req *UploadRequest) (time.Duration, error) {
	if req.probedDuration != nil {
		return *req.probedDuration, nil
	}
	d, err := s.prober.Duration(ctx, req.File().Path)
	if err != nil {
		return 0, ErrMetadataExtraction(err)
	}
	req.probedDuration = &d
	return d, nil
}

func (s *UploadService) extractFrame(ctx context.Context, req *UploadRequest) (string, error) {
	tmp, err := os.CreateTemp("", "thumb-*.jpg")
	if err != nil {
		return "", err
	}
	framePath := tmp.Name()
	_ = tmp.Close()
	if err := s.prober.ExtractFrame(ctx, req.File().Path, framePath); err != nil {
		_ = os.Remove(framePath)
		return "", err
	}
	return framePath, nil
}

// objectKey 生成按用户与毫秒时间戳命名空间化的对象键。
// 时间戳粒度即防碰撞机制（单会话单次在途上传的前提下足够）。
func (s *UploadService) objectKey(req *UploadRequest) string {
	return fmt.Sprintf("%s/%d%s", req.OwnerID(), s.now().UnixMilli(), req.Extension())
}

// uploadObject 执行对象上传并桥接进度回调。
func (s *UploadService) uploadObject(ctx context.Context, req *UploadRequest, key string, onProgress ProgressFunc) (*PutResult, error) {
	f, err := os.Open(req.File().Path)
	if err != nil {
		return nil, ErrStorage(fmt.Errorf("open staged file: %w", err))
	}
	defer func() { _ = f.Close() }()

	progress := NewUploadProgress(req.File().SizeBytes)
	report := func() {
		if onProgress != nil {
			onProgress(progress.Snapshot())
		}
	}

	result, err := s.store.Put(ctx, PutInput{
		Key:         key,
		ContentType: req.File().MIMEType,
		Body:        f,
		Size:        req.File().SizeBytes,
		OnProgress: func(loaded, total int64) {
			progress.Observe(loaded, total)
			report()
		},
	})
	if err != nil {
		return nil, ErrStorage(err)
	}

	// 进度只在确认完成后到达 1.0。
	progress.Complete()
	report()
	return result, nil
}

// uploadThumbnail 把派生的缩略图帧写入对象存储，失败时回退占位 URL。
// 返回 nil 表示该内容不携带缩略图（image 分类）。
func (s *UploadService) uploadThumbnail(ctx context.Context, objectKey string, meta *derivedMetadata) *string {
	if meta.durationSeconds == nil {
		return nil
	}
	if meta.framePath != "" {
		if url := s.putFrame(ctx, objectKey, meta.framePath); url != nil {
			return url
		}
	}
	if s.cfg.PlaceholderThumbnailURL != "" {
		url := s.cfg.PlaceholderThumbnailURL
		return &url
	}
	return nil
}

func (s *UploadService) putFrame(ctx context.Context, objectKey, framePath string) *string {
	f, err := os.Open(framePath)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	thumbKey := strings.TrimSuffix(objectKey, extOf(objectKey)) + "_thumb.jpg"
	result, err := s.store.Put(ctx, PutInput{
		Key:         thumbKey,
		ContentType: "image/jpeg",
		Body:        f,
		Size:        size,
	})
	if err != nil {
		s.log.WithContext(ctx).Warnf("thumbnail upload failed, will use placeholder: %v", err)
		return nil
	}
	return &result.PublicURL
}

func extOf(key string) string {
	if idx := strings.LastIndex(key, "."); idx > strings.LastIndex(key, "/") {
		return key[idx:]
	}
	return ""
}

// buildOutboxEvent 构造 content.added 的 Outbox 记录，与目录插入同事务。
func (s *UploadService) buildOutboxEvent(record *po.Content) (*po.OutboxEvent, error) {
	occurredAt := s.now().UTC()
	payload, err := events.NewContentAdded(record, occurredAt)
	if err != nil {
		return nil, err
	}
	data, err := payload.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal content.added payload: %w", err)
	}
	return &po.OutboxEvent{
		EventID:       s.newEventID(),
		AggregateType: events.AggregateTypeContent,
		AggregateID:   record.ContentID,
		EventType:     events.TypeContentAdded,
		Payload:       data,
		Status:        po.OutboxStatusPending,
		AvailableAt:   occurredAt,
	}, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	trimmed := value
	return &trimmed
}
