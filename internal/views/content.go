// Package views 负责将内部 VO 对象渲染为 HTTP JSON 响应。
// 该层作为传输层的序列化适配器，隔离业务逻辑与协议细节。
package views

import "github.com/streamspace/streamspace-services-content/internal/models/vo"

// UploadContentResponse 是上传成功的响应信封。
type UploadContentResponse struct {
	Receipt *vo.UploadReceipt `json:"receipt"`
}

// NewUploadContentResponse 将 UploadReceipt 渲染为响应。
func NewUploadContentResponse(receipt *vo.UploadReceipt) *UploadContentResponse {
	return &UploadContentResponse{Receipt: receipt}
}

// GetContentDetailResponse 是内容详情响应信封。
type GetContentDetailResponse struct {
	Detail *vo.ContentDetail `json:"detail"`
}

// NewGetContentDetailResponse 将 ContentDetail 渲染为响应。
func NewGetContentDetailResponse(detail *vo.ContentDetail) *GetContentDetailResponse {
	return &GetContentDetailResponse{Detail: detail}
}

// ListContentResponse 是 Feed 列表响应信封。
type ListContentResponse struct {
	Items []*vo.ContentDetail `json:"items"`
}

// NewListContentResponse 将内容列表渲染为响应。Items 永不为 null。
func NewListContentResponse(items []*vo.ContentDetail) *ListContentResponse {
	if items == nil {
		items = []*vo.ContentDetail{}
	}
	return &ListContentResponse{Items: items}
}
