package loader

import (
	"errors"
	"fmt"
	"time"
)

// Bootstrap 是服务的强类型配置根。
// 字段来自 configs/ 下的 YAML 文件，部分字段支持环境变量覆盖。
type Bootstrap struct {
	Server  Server  `json:"server"`
	Data    Data    `json:"data"`
	Storage Storage `json:"storage"`
	PubSub  PubSub  `json:"pubsub"`
	Upload  Upload  `json:"upload"`
	Outbox  Outbox  `json:"outbox"`
}

// Server 描述 HTTP 服务器配置。
type Server struct {
	HTTP HTTPServer `json:"http"`
}

// HTTPServer 描述 HTTP 监听配置。
type HTTPServer struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"` // Go duration 字面量，如 "30s"
}

// Data 聚合数据源配置。
type Data struct {
	Postgres Postgres `json:"postgres"`
}

// Postgres 描述 PostgreSQL 连接池配置。
type Postgres struct {
	DSN                      string `json:"dsn"`
	Schema                   string `json:"schema"`
	MaxOpenConns             int32  `json:"max_open_conns"`
	MinOpenConns             int32  `json:"min_open_conns"`
	MaxConnLifetime          string `json:"max_conn_lifetime"`
	MaxConnIdleTime          string `json:"max_conn_idle_time"`
	HealthCheckPeriod        string `json:"health_check_period"`
	EnablePreparedStatements bool   `json:"enable_prepared_statements"`
}

// Storage 描述对象存储（GCS）配置。
type Storage struct {
	Bucket string `json:"bucket"`
	// PublicBaseURL 覆盖公开 URL 前缀；为空时使用
	// https://storage.googleapis.com/{bucket}。
	PublicBaseURL string `json:"public_base_url"`
}

// PubSub 描述事件发布配置。TopicID 为空时关闭发布任务。
type PubSub struct {
	ProjectID      string `json:"project_id"`
	TopicID        string `json:"topic_id"`
	EnableOrdering bool   `json:"enable_ordering"`
}

// Upload 描述上传流水线配置。
type Upload struct {
	MaxFileSizeBytes        int64  `json:"max_file_size_bytes"`
	ShortMaxDuration        string `json:"short_max_duration"` // 默认 60s
	PlaceholderThumbnailURL string `json:"placeholder_thumbnail_url"`
	FFprobePath             string `json:"ffprobe_path"`
	FFmpegPath              string `json:"ffmpeg_path"`
	ProbeTimeout            string `json:"probe_timeout"`
}

// Outbox 描述发布任务的节奏参数。
type Outbox struct {
	BatchSize      int32  `json:"batch_size"`
	TickInterval   string `json:"tick_interval"`
	InitialBackoff string `json:"initial_backoff"`
	MaxBackoff     string `json:"max_backoff"`
	MaxAttempts    int32  `json:"max_attempts"`
	PublishTimeout string `json:"publish_timeout"`
}

// Validate 检查配置完整性，缺失关键字段时启动失败。
func (b *Bootstrap) Validate() error {
	if b == nil {
		return errors.New("bootstrap config is nil")
	}
	if b.Server.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if b.Data.Postgres.DSN == "" {
		return errors.New("data.postgres.dsn is required (set DATABASE_URL)")
	}
	if b.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	for _, d := range []struct {
		name  string
		value string
	}{
		{"server.http.timeout", b.Server.HTTP.Timeout},
		{"data.postgres.max_conn_lifetime", b.Data.Postgres.MaxConnLifetime},
		{"data.postgres.max_conn_idle_time", b.Data.Postgres.MaxConnIdleTime},
		{"data.postgres.health_check_period", b.Data.Postgres.HealthCheckPeriod},
		{"upload.short_max_duration", b.Upload.ShortMaxDuration},
		{"upload.probe_timeout", b.Upload.ProbeTimeout},
		{"outbox.tick_interval", b.Outbox.TickInterval},
		{"outbox.initial_backoff", b.Outbox.InitialBackoff},
		{"outbox.max_backoff", b.Outbox.MaxBackoff},
		{"outbox.publish_timeout", b.Outbox.PublishTimeout},
	} {
		if _, err := durationOrDefault(d.value, 0); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return nil
}

// durationOrDefault 解析 Go duration 字面量，空串返回默认值。
func durationOrDefault(value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}

// MustDuration 在配置已通过 Validate 的前提下解析 duration。
func MustDuration(value string, def time.Duration) time.Duration {
	d, err := durationOrDefault(value, def)
	if err != nil {
		return def
	}
	return d
}
