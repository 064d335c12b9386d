package controllers

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/services"
	"github.com/streamspace/streamspace-services-content/internal/views"
)

// UploadHandler 处理内容上传的 HTTP 入口。
// multipart 流先落到本地临时文件，探测与上传读同一路径。
type UploadHandler struct {
	*BaseHandler
	svc *services.UploadService
	log *log.Helper
}

// NewUploadHandler 构造 UploadHandler。
func NewUploadHandler(base *BaseHandler, svc *services.UploadService, logger log.Logger) *UploadHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &UploadHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// Upload 处理 POST /v1/content/upload。
// 表单字段：file（必填）、title、description、content_type（覆盖自动分类）。
func (h *UploadHandler) Upload(ctx khttp.Context) error {
	if h.svc == nil {
		return kerrors.InternalServer(services.ReasonUploadInvalid, "upload service not available")
	}
	httpReq := ctx.Request()

	meta := h.ExtractMetadata(httpReq.Context())
	ownerID, ok := meta.UserUUID()
	if !ok {
		if meta.UserID != "" {
			return kerrors.BadRequest(services.ReasonUploadInvalid, "invalid user metadata")
		}
		return kerrors.Unauthorized(services.ReasonUploadInvalid, "user metadata required")
	}

	file, header, err := httpReq.FormFile("file")
	if err != nil {
		return services.ErrNoFile("no file selected")
	}
	defer func() { _ = file.Close() }()

	stagedPath, stagedSize, cleanup, err := stageUpload(file, header.Filename)
	if err != nil {
		return kerrors.InternalServer(services.ReasonUploadInvalid, "failed to stage upload").WithCause(err)
	}
	defer cleanup()

	req, err := services.NewUploadRequest(ownerID, services.LocalFile{
		Path:      stagedPath,
		Name:      header.Filename,
		MIMEType:  detectMIME(header),
		SizeBytes: stagedSize,
	})
	if err != nil {
		return err
	}
	req.SetTitle(httpReq.FormValue("title"))
	req.SetDescription(httpReq.FormValue("description"))
	if v := strings.TrimSpace(httpReq.FormValue("content_type")); v != "" {
		if err := req.OverrideType(po.ContentType(v)); err != nil {
			return err
		}
	}

	timeoutCtx, cancel := h.WithTimeout(httpReq.Context(), HandlerTypeCommand)
	defer cancel()

	receipt, err := h.svc.Submit(timeoutCtx, req, h.progressLogger(timeoutCtx, header.Filename))
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusCreated, views.NewUploadContentResponse(receipt))
}

// stageUpload 把 multipart 流写入临时文件并返回路径、字节数与清理函数。
func stageUpload(src multipart.File, filename string) (string, int64, func(), error) {
	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", 0, nil, err
	}
	path := tmp.Name()

	written, err := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, nil, err
	}
	return path, written, func() { _ = os.Remove(path) }, nil
}

// detectMIME 优先使用浏览器声明的 Content-Type，缺失时按扩展名推断。
func detectMIME(header *multipart.FileHeader) string {
	if ct := strings.TrimSpace(header.Header.Get("Content-Type")); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		return byExt
	}
	return strings.TrimSpace(header.Header.Get("Content-Type"))
}

// progressLogger 把字节进度桥接为低频 Debug 日志（每 25% 一条）。
func (h *UploadHandler) progressLogger(ctx context.Context, filename string) services.ProgressFunc {
	var lastStep int64 = -1
	return func(loaded, total int64) {
		if total <= 0 {
			return
		}
		step := loaded * 4 / total
		if step > lastStep {
			lastStep = step
			h.log.WithContext(ctx).Debugf("upload progress: file=%s loaded=%d total=%d", filename, loaded, total)
		}
	}
}
