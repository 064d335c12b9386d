package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/transport"
	"github.com/google/uuid"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写模型命令 Handler（上传流水线）。
	HandlerTypeCommand
	// HandlerTypeQuery 表示读模型查询 Handler（Feed 与详情）。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 30 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
	headerUserID           = "x-md-global-user-id"
)

// BaseHandler 提供公共的超时、Metadata 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		timeouts.Query = fallbackQueryTimeout
	}
	return &BaseHandler{timeouts: timeouts}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// HandlerMetadata 描述从请求头解析出的调用方信息。
// 身份认证由上游网关完成，本服务只消费透传的用户标识头。
type HandlerMetadata struct {
	UserID string
}

// UserUUID 解析用户标识为 UUID。
func (m HandlerMetadata) UserUUID() (uuid.UUID, bool) {
	trimmed := strings.TrimSpace(m.UserID)
	if trimmed == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(trimmed)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ExtractMetadata 从传输层请求头解析调用方元数据。
func (h *BaseHandler) ExtractMetadata(ctx context.Context) HandlerMetadata {
	tr, ok := transport.FromServerContext(ctx)
	if !ok {
		return HandlerMetadata{}
	}
	return HandlerMetadata{
		UserID: strings.TrimSpace(tr.RequestHeader().Get(headerUserID)),
	}
}
