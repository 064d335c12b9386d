// Package objectstore 提供对象存储（Google Cloud Storage）的基础设施封装。
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
	"github.com/streamspace/streamspace-services-content/internal/services"
)

// NewClient 创建 GCS 客户端，返回 Wire cleanup。
func NewClient(ctx context.Context, logger log.Logger) (*storage.Client, func(), error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	cleanup := func() {
		log.NewHelper(logger).Info("closing gcs client")
		_ = client.Close()
	}
	return client, cleanup, nil
}

// GCSStore 实现 services.ObjectStore：按键写入对象并解析公开 URL。
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
	log     *log.Helper
}

var _ services.ObjectStore = (*GCSStore)(nil)

// NewGCSStore 构造 GCSStore。
func NewGCSStore(client *storage.Client, cfg loader.Storage, logger log.Logger) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("object store: gcs client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("object store: bucket is required")
	}
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		log:     log.NewHelper(logger),
	}, nil
}

// Put 将对象写入 bucket 并返回公开访问 URL。
// 进度回调随源数据被读取而推进；只有 Writer 成功 Close（服务端确认）
// 之后写入才算完成，调用方据此决定何时汇报 1.0。
func (s *GCSStore) Put(ctx context.Context, in services.PutInput) (*services.PutResult, error) {
	if in.Key == "" {
		return nil, errors.New("object store: key is required")
	}
	if in.Body == nil {
		return nil, errors.New("object store: body is required")
	}

	w := s.client.Bucket(s.bucket).Object(in.Key).NewWriter(ctx)
	if in.ContentType != "" {
		w.ContentType = in.ContentType
	}

	src := io.Reader(in.Body)
	if in.OnProgress != nil {
		src = &progressReader{r: in.Body, total: in.Size, onProgress: in.OnProgress}
	}

	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("upload object %s: %w", in.Key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize object %s: %w", in.Key, err)
	}

	s.log.WithContext(ctx).Debugf("object stored: key=%s bytes=%d", in.Key, n)
	return &services.PutResult{
		Key:          in.Key,
		PublicURL:    s.PublicURL(in.Key),
		BytesWritten: n,
	}, nil
}

// Attrs 查询对象属性，用于孤儿对象的可观测性与运维排查。
func (s *GCSStore) Attrs(ctx context.Context, key string) (*storage.ObjectAttrs, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("object attrs %s: %w", key, err)
	}
	return attrs, nil
}

// Delete 删除对象。目录写入失败后的孤儿清理由运维决策，不自动触发。
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL 解析对象的稳定公开 URL。
func (s *GCSStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// progressReader 在数据被读取时推进字节进度回调。
type progressReader struct {
	r          io.Reader
	total      int64
	loaded     int64
	onProgress services.ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.loaded += int64(n)
		p.onProgress(p.loaded, p.total)
	}
	return n, err
}
