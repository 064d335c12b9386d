package controllers

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/transport"
	"github.com/google/uuid"
)

type testHeader map[string]string

func (h testHeader) Get(key string) string      { return h[key] }
func (h testHeader) Set(key, value string)      { h[key] = value }
func (h testHeader) Add(key, value string)      { h[key] = value }
func (h testHeader) Values(key string) []string { return []string{h[key]} }
func (h testHeader) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}

type testTransport struct{ header testHeader }

func (t testTransport) Kind() transport.Kind            { return transport.KindHTTP }
func (t testTransport) Endpoint() string                { return "" }
func (t testTransport) Operation() string               { return "" }
func (t testTransport) RequestHeader() transport.Header { return t.header }
func (t testTransport) ReplyHeader() transport.Header   { return t.header }

func TestExtractMetadata(t *testing.T) {
	userID := uuid.New()
	ctx := transport.NewServerContext(context.Background(), testTransport{
		header: testHeader{headerUserID: " " + userID.String() + " "},
	})

	h := NewBaseHandler(HandlerTimeouts{})
	meta := h.ExtractMetadata(ctx)
	got, ok := meta.UserUUID()
	if !ok {
		t.Fatal("expected user uuid")
	}
	if got != userID {
		t.Fatalf("UserUUID() = %s, want %s", got, userID)
	}
}

func TestExtractMetadataMissingTransport(t *testing.T) {
	h := NewBaseHandler(HandlerTimeouts{})
	meta := h.ExtractMetadata(context.Background())
	if _, ok := meta.UserUUID(); ok {
		t.Fatal("expected no user uuid without transport context")
	}
}

func TestUserUUIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-uuid", uuid.Nil.String()} {
		if _, ok := (HandlerMetadata{UserID: raw}).UserUUID(); ok {
			t.Errorf("UserUUID(%q) unexpectedly valid", raw)
		}
	}
}

func TestNewBaseHandlerFallbacks(t *testing.T) {
	h := NewBaseHandler(HandlerTimeouts{})
	if h.timeouts.Default != fallbackDefaultTimeout {
		t.Errorf("Default = %v, want %v", h.timeouts.Default, fallbackDefaultTimeout)
	}
	if h.timeouts.Command != fallbackDefaultTimeout {
		t.Errorf("Command = %v, want %v", h.timeouts.Command, fallbackDefaultTimeout)
	}
	if h.timeouts.Query != fallbackQueryTimeout {
		t.Errorf("Query = %v, want %v", h.timeouts.Query, fallbackQueryTimeout)
	}

	h = NewBaseHandler(HandlerTimeouts{Command: time.Minute})
	if h.timeouts.Default != time.Minute {
		t.Errorf("Default = %v, want command value", h.timeouts.Default)
	}
}

func TestWithTimeout(t *testing.T) {
	h := NewBaseHandler(HandlerTimeouts{Command: time.Hour, Query: time.Minute})

	ctx, cancel := h.WithTimeout(context.Background(), HandlerTypeQuery)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline")
	}
	if remaining := time.Until(deadline); remaining > time.Minute {
		t.Fatalf("query deadline too far: %v", remaining)
	}
}

func TestDetectMIME(t *testing.T) {
	withType := &multipart.FileHeader{
		Filename: "clip.mp4",
		Header:   textproto.MIMEHeader{"Content-Type": []string{"video/mp4"}},
	}
	if got := detectMIME(withType); got != "video/mp4" {
		t.Fatalf("detectMIME = %q", got)
	}

	octetStream := &multipart.FileHeader{
		Filename: "photo.png",
		Header:   textproto.MIMEHeader{"Content-Type": []string{"application/octet-stream"}},
	}
	if got := detectMIME(octetStream); got != "image/png" {
		t.Fatalf("detectMIME should fall back to extension, got %q", got)
	}

	unknown := &multipart.FileHeader{
		Filename: "blob",
		Header:   textproto.MIMEHeader{"Content-Type": []string{"application/octet-stream"}},
	}
	if got := detectMIME(unknown); got != "application/octet-stream" {
		t.Fatalf("detectMIME for unknown extension = %q", got)
	}
}
