package objectstore

import (
	"bytes"
	"io"
	"testing"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

func TestProgressReaderReportsLoadedBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1000)

	var reports [][2]int64
	pr := &progressReader{
		r:     bytes.NewReader(payload),
		total: int64(len(payload)),
		onProgress: func(loaded, total int64) {
			reports = append(reports, [2]int64{loaded, total})
		},
	}

	n, err := io.Copy(io.Discard, pr)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("copied %d bytes, want %d", n, len(payload))
	}
	if len(reports) == 0 {
		t.Fatal("expected progress callbacks")
	}

	last := reports[len(reports)-1]
	if last[0] != int64(len(payload)) || last[1] != int64(len(payload)) {
		t.Fatalf("final report = %v, want (%d, %d)", last, len(payload), len(payload))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i][0] < reports[i-1][0] {
			t.Fatalf("loaded bytes regressed: %v -> %v", reports[i-1], reports[i])
		}
	}
}

func TestPublicURL(t *testing.T) {
	s := &GCSStore{baseURL: "https://storage.googleapis.com/media"}
	if got := s.PublicURL("user/123.mp4"); got != "https://storage.googleapis.com/media/user/123.mp4" {
		t.Fatalf("PublicURL = %q", got)
	}

	custom := &GCSStore{baseURL: "https://cdn.example.com"}
	if got := custom.PublicURL("a/b.jpg"); got != "https://cdn.example.com/a/b.jpg" {
		t.Fatalf("PublicURL with custom base = %q", got)
	}
}

func TestNewGCSStoreRequiresClient(t *testing.T) {
	if _, err := NewGCSStore(nil, loader.Storage{Bucket: "media"}, nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}
