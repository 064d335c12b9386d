package services

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/streamspace/streamspace-services-content/internal/models/po"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

// LocalFile 描述一个已落地到本地磁盘的待上传文件。
// Controller 层负责把 multipart 流写入临时文件后再进入流水线，
// 探测（ffprobe）与上传都从同一路径读取。
type LocalFile struct {
	Path      string // 本地临时文件路径
	Name      string // 原始文件名（用于标题派生与扩展名）
	MIMEType  string // 浏览器声明的 MIME 类型
	SizeBytes int64  // 文件字节数
}

// UploadRequest 是一次上传尝试的瞬态状态，在文件选择时创建，
// 被 Submit 恰好消费一次后丢弃（无论成败），不跨尝试复用。
// 标题/描述/分类在提交前可变；首次时长探测结果缓存在请求上，
// 持久化阶段复用同一测量值，避免两次独立探测产生分歧。
type UploadRequest struct {
	ownerID     uuid.UUID
	file        LocalFile
	title       string
	description string

	declaredType   po.ContentType // 自动分类结果或用户覆盖值
	typeOverridden bool           // 用户手动覆盖后自动分类不再生效

	probedDuration *time.Duration // 首次探测缓存，提交阶段复用
	consumed       bool
}

// NewUploadRequest 执行 Intake 阶段：校验文件存在且非空。
// 同一会话再次选择文件时应构造新的 UploadRequest 替换旧实例。
func NewUploadRequest(ownerID uuid.UUID, file LocalFile) (*UploadRequest, error) {
	if ownerID == uuid.Nil {
		return nil, kerrors.Unauthorized(ReasonUploadInvalid, "owner id is required")
	}
	if file.Path == "" || file.Name == "" {
		return nil, ErrNoFile("no file selected")
	}
	if file.SizeBytes <= 0 {
		return nil, ErrNoFile("selected file is empty")
	}
	return &UploadRequest{ownerID: ownerID, file: file}, nil
}

// OwnerID 返回上传者 ID。
func (r *UploadRequest) OwnerID() uuid.UUID { return r.ownerID }

// File 返回待上传文件。
func (r *UploadRequest) File() LocalFile { return r.file }

// Title 返回当前标题（可能为空，分类阶段会按需自动派生）。
func (r *UploadRequest) Title() string { return r.title }

// SetTitle 设置用户输入标题。用户输入优先于自动派生值。
func (r *UploadRequest) SetTitle(title string) {
	r.title = strings.TrimSpace(title)
}

// Description 返回描述。
func (r *UploadRequest) Description() string { return r.description }

// SetDescription 设置描述。
func (r *UploadRequest) SetDescription(desc string) {
	r.description = strings.TrimSpace(desc)
}

// DeclaredType 返回当前分类（自动检测或用户覆盖后的值）。
func (r *UploadRequest) DeclaredType() po.ContentType { return r.declaredType }

// OverrideType 记录用户手动指定的分类。提交时以该值为准，
// 自动分类结果仅作建议。
func (r *UploadRequest) OverrideType(t po.ContentType) error {
	if !t.Valid() {
		return kerrors.BadRequest(ReasonUploadInvalid, "unknown content type: "+string(t))
	}
	r.declaredType = t
	r.typeOverridden = true
	return nil
}

// TypeOverridden 报告分类是否被用户手动覆盖。
func (r *UploadRequest) TypeOverridden() bool { return r.typeOverridden }

// Extension 返回原始文件的小写扩展名（含点），无扩展名时为空串。
func (r *UploadRequest) Extension() string {
	return strings.ToLower(filepath.Ext(r.file.Name))
}

// autofillTitle 在标题为空时从文件名派生标题，不覆盖用户输入。
func (r *UploadRequest) autofillTitle() {
	if r.title == "" {
		r.title = DeriveTitle(r.file.Name)
	}
}

// markConsumed 标记请求已被消费。重复提交返回错误。
func (r *UploadRequest) markConsumed() error {
	if r.consumed {
		return kerrors.BadRequest(ReasonUploadInvalid, "upload request already consumed")
	}
	r.consumed = true
	return nil
}

// DeriveTitle 从文件名派生可读标题：去掉扩展名，把 _ / - 替换为空格，
// 每个单词首字母大写。例：my_cool-video.mp4 -> "My Cool Video"。
func DeriveTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	var b strings.Builder
	b.Grow(len(base))
	prevSpace := true
	for _, r := range base {
		if unicode.IsSpace(r) {
			// 压缩连续分隔符产生的多余空格
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		if prevSpace {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevSpace = false
	}
	return strings.TrimSpace(b.String())
}
