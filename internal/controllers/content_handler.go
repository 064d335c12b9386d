package controllers

import (
	"net/http"
	"strconv"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/services"
	"github.com/streamspace/streamspace-services-content/internal/views"
)

// ContentHandler 处理内容目录读路径的 HTTP 入口。
type ContentHandler struct {
	*BaseHandler
	svc *services.ContentQueryService
}

// NewContentHandler 构造 ContentHandler。
func NewContentHandler(base *BaseHandler, svc *services.ContentQueryService) *ContentHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &ContentHandler{BaseHandler: base, svc: svc}
}

// List 处理 GET /v1/content。
// 查询参数：type（video|image|short）、sort（latest|popular|trending）、limit。
func (h *ContentHandler) List(ctx khttp.Context) error {
	query := ctx.Query()

	q := services.ContentListQuery{
		Sort: services.ContentSort(strings.TrimSpace(query.Get("sort"))),
	}
	if v := strings.TrimSpace(query.Get("type")); v != "" {
		t := po.ContentType(v)
		q.ContentType = &t
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		limit, err := strconv.ParseInt(v, 10, 32)
		if err != nil || limit < 0 {
			return kerrors.BadRequest(services.ReasonUploadInvalid, "limit must be a non-negative integer")
		}
		q.Limit = int32(limit)
	}

	timeoutCtx, cancel := h.WithTimeout(ctx.Request().Context(), HandlerTypeQuery)
	defer cancel()

	items, err := h.svc.ListContent(timeoutCtx, q)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, views.NewListContentResponse(items))
}

// Get 处理 GET /v1/content/{id}。
func (h *ContentHandler) Get(ctx khttp.Context) error {
	raw := strings.TrimSpace(ctx.Vars().Get("id"))
	contentID, err := uuid.Parse(raw)
	if err != nil || contentID == uuid.Nil {
		return kerrors.BadRequest(services.ReasonUploadInvalid, "invalid content id")
	}

	timeoutCtx, cancel := h.WithTimeout(ctx.Request().Context(), HandlerTypeQuery)
	defer cancel()

	detail, err := h.svc.GetContentDetail(timeoutCtx, contentID)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, views.NewGetContentDetailResponse(detail))
}
