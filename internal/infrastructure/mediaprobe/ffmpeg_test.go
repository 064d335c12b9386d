package mediaprobe

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

func TestNewFFmpegProberDefaults(t *testing.T) {
	p := NewFFmpegProber(loader.Upload{}, log.DefaultLogger)
	if p.ffprobePath != "ffprobe" {
		t.Errorf("ffprobePath = %q, want %q", p.ffprobePath, "ffprobe")
	}
	if p.ffmpegPath != "ffmpeg" {
		t.Errorf("ffmpegPath = %q, want %q", p.ffmpegPath, "ffmpeg")
	}
	if p.probeTimeout != defaultProbeTimeout {
		t.Errorf("probeTimeout = %v, want %v", p.probeTimeout, defaultProbeTimeout)
	}
}

func TestNewFFmpegProberConfigured(t *testing.T) {
	p := NewFFmpegProber(loader.Upload{
		FFprobePath:  "/opt/bin/ffprobe",
		FFmpegPath:   "/opt/bin/ffmpeg",
		ProbeTimeout: "5s",
	}, log.DefaultLogger)
	if p.ffprobePath != "/opt/bin/ffprobe" {
		t.Errorf("ffprobePath = %q", p.ffprobePath)
	}
	if p.ffmpegPath != "/opt/bin/ffmpeg" {
		t.Errorf("ffmpegPath = %q", p.ffmpegPath)
	}
	if p.probeTimeout != 5*time.Second {
		t.Errorf("probeTimeout = %v", p.probeTimeout)
	}
}

func TestDurationMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}
	p := NewFFmpegProber(loader.Upload{}, log.DefaultLogger)
	if _, err := p.Duration(context.Background(), "/nonexistent/file.mp4"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
