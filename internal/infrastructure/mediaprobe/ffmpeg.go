// Package mediaprobe 通过外部 ffprobe/ffmpeg 进程探测媒体元数据。
package mediaprobe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
	"github.com/streamspace/streamspace-services-content/internal/services"
)

const (
	defaultFFprobePath  = "ffprobe"
	defaultFFmpegPath   = "ffmpeg"
	defaultProbeTimeout = 30 * time.Second
)

// FFmpegProber 实现 services.MediaProber。
// 每次探测派生一个带超时的子 context，避免损坏文件拖死请求。
type FFmpegProber struct {
	ffprobePath  string
	ffmpegPath   string
	probeTimeout time.Duration
	log          *log.Helper
}

var _ services.MediaProber = (*FFmpegProber)(nil)

// NewFFmpegProber 构造探测器，未配置的字段使用默认二进制名与超时。
func NewFFmpegProber(cfg loader.Upload, logger log.Logger) *FFmpegProber {
	p := &FFmpegProber{
		ffprobePath:  cfg.FFprobePath,
		ffmpegPath:   cfg.FFmpegPath,
		probeTimeout: loader.MustDuration(cfg.ProbeTimeout, defaultProbeTimeout),
		log:          log.NewHelper(logger),
	}
	if p.ffprobePath == "" {
		p.ffprobePath = defaultFFprobePath
	}
	if p.ffmpegPath == "" {
		p.ffmpegPath = defaultFFmpegPath
	}
	if p.probeTimeout <= 0 {
		p.probeTimeout = defaultProbeTimeout
	}
	return p
}

// Duration 通过 ffprobe 读取容器层时长。
func (p *FFmpegProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(probeCtx, p.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	raw := strings.TrimSpace(string(output))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", raw, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// ExtractFrame 截取视频首帧写入 framePath（JPEG）。
func (p *FFmpegProber) ExtractFrame(ctx context.Context, videoPath, framePath string) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		framePath,
	}

	cmd := exec.CommandContext(probeCtx, p.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %w, output: %s", err, string(output))
	}
	return nil
}
