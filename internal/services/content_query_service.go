package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/models/vo"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ContentSort 表示 Feed 排序方式。
type ContentSort string

const (
	// SortLatest 按创建时间倒序（默认）。
	SortLatest ContentSort = "latest"
	// SortPopular 按点赞数倒序。
	SortPopular ContentSort = "popular"
	// SortTrending 按播放数倒序。
	SortTrending ContentSort = "trending"
)

// Valid 判断排序取值是否合法。
func (s ContentSort) Valid() bool {
	switch s {
	case SortLatest, SortPopular, SortTrending:
		return true
	}
	return false
}

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ContentListQuery 描述 Feed 读路径的查询条件。
type ContentListQuery struct {
	ContentType *po.ContentType // nil 表示全部分类
	Sort        ContentSort
	Limit       int32
}

// ContentQueryRepo 定义读路径所需的数据访问接口。
type ContentQueryRepo interface {
	FindByID(ctx context.Context, contentID uuid.UUID) (*po.Content, error)
	List(ctx context.Context, q ContentListQuery) ([]*po.Content, error)
}

// ContentQueryService 封装内容目录的只读用例（Feed 列表与详情）。
type ContentQueryService struct {
	repo ContentQueryRepo
	log  *log.Helper
}

// NewContentQueryService 构造内容查询服务。
func NewContentQueryService(repo ContentQueryRepo, logger log.Logger) *ContentQueryService {
	return &ContentQueryService{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetContentDetail 查询单条内容详情。
func (s *ContentQueryService) GetContentDetail(ctx context.Context, contentID uuid.UUID) (*vo.ContentDetail, error) {
	if contentID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonUploadInvalid, "content_id is required")
	}
	content, err := s.repo.FindByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, ErrContentNotFound
		}
		s.log.WithContext(ctx).Errorf("get content detail failed: content_id=%s err=%v", contentID, err)
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to query content").
			WithCause(fmt.Errorf("find content by id: %w", err))
	}
	return vo.NewContentDetail(content), nil
}

// ListContent 查询 Feed 列表：按分类过滤、按 latest/popular/trending 排序。
// limit 为 0 时取默认 20，上限 100。
func (s *ContentQueryService) ListContent(ctx context.Context, q ContentListQuery) ([]*vo.ContentDetail, error) {
	if q.ContentType != nil && !q.ContentType.Valid() {
		return nil, kerrors.BadRequest(ReasonUploadInvalid, "unknown content type filter: "+string(*q.ContentType))
	}
	if q.Sort == "" {
		q.Sort = SortLatest
	}
	if !q.Sort.Valid() {
		return nil, kerrors.BadRequest(ReasonUploadInvalid, "unknown sort: "+string(q.Sort))
	}
	if q.Limit <= 0 {
		q.Limit = defaultFeedLimit
	}
	if q.Limit > maxFeedLimit {
		q.Limit = maxFeedLimit
	}

	items, err := s.repo.List(ctx, q)
	if err != nil {
		s.log.WithContext(ctx).Errorf("list content failed: sort=%s err=%v", q.Sort, err)
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to list content").
			WithCause(fmt.Errorf("list content: %w", err))
	}

	s.log.WithContext(ctx).Debugf("ListContent: sort=%s limit=%d returned=%d", q.Sort, q.Limit, len(items))
	return vo.NewContentList(items), nil
}
