package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubQueryRepo struct {
	byID      *po.Content
	items     []*po.Content
	err       error
	lastQuery services.ContentListQuery
}

func (s *stubQueryRepo) FindByID(_ context.Context, _ uuid.UUID) (*po.Content, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.byID == nil {
		return nil, services.ErrContentNotFound
	}
	return s.byID, nil
}

func (s *stubQueryRepo) List(_ context.Context, q services.ContentListQuery) ([]*po.Content, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func sampleContent() *po.Content {
	return &po.Content{
		ContentID:     uuid.New(),
		OwnerID:       uuid.New(),
		Title:         "Sample",
		FileURL:       "https://cdn.example/sample.mp4",
		ContentType:   po.ContentTypeVideo,
		FileSizeBytes: 2048,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestGetContentDetail(t *testing.T) {
	content := sampleContent()
	svc := services.NewContentQueryService(&stubQueryRepo{byID: content}, log.DefaultLogger)

	detail, err := svc.GetContentDetail(context.Background(), content.ContentID)
	require.NoError(t, err)
	require.Equal(t, content.ContentID, detail.ContentID)
	require.Equal(t, content.Title, detail.Title)
}

func TestGetContentDetailNotFound(t *testing.T) {
	svc := services.NewContentQueryService(&stubQueryRepo{}, log.DefaultLogger)

	_, err := svc.GetContentDetail(context.Background(), uuid.New())
	require.ErrorIs(t, err, services.ErrContentNotFound)
	require.True(t, services.IsReason(err, services.ReasonContentNotFound))
}

func TestGetContentDetailNilID(t *testing.T) {
	svc := services.NewContentQueryService(&stubQueryRepo{}, log.DefaultLogger)

	_, err := svc.GetContentDetail(context.Background(), uuid.Nil)
	require.True(t, services.IsReason(err, services.ReasonUploadInvalid))
}

func TestListContentDefaults(t *testing.T) {
	repo := &stubQueryRepo{items: []*po.Content{sampleContent()}}
	svc := services.NewContentQueryService(repo, log.DefaultLogger)

	items, err := svc.ListContent(context.Background(), services.ContentListQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, services.SortLatest, repo.lastQuery.Sort)
	require.Equal(t, int32(20), repo.lastQuery.Limit)
}

func TestListContentClampsLimit(t *testing.T) {
	repo := &stubQueryRepo{}
	svc := services.NewContentQueryService(repo, log.DefaultLogger)

	_, err := svc.ListContent(context.Background(), services.ContentListQuery{Limit: 500})
	require.NoError(t, err)
	require.Equal(t, int32(100), repo.lastQuery.Limit)
}

func TestListContentRejectsUnknownSort(t *testing.T) {
	svc := services.NewContentQueryService(&stubQueryRepo{}, log.DefaultLogger)

	_, err := svc.ListContent(context.Background(), services.ContentListQuery{Sort: "viral"})
	require.True(t, services.IsReason(err, services.ReasonUploadInvalid))
}

func TestListContentRejectsUnknownTypeFilter(t *testing.T) {
	svc := services.NewContentQueryService(&stubQueryRepo{}, log.DefaultLogger)

	bad := po.ContentType("gif")
	_, err := svc.ListContent(context.Background(), services.ContentListQuery{ContentType: &bad})
	require.True(t, services.IsReason(err, services.ReasonUploadInvalid))
}

func TestListContentWrapsRepoError(t *testing.T) {
	svc := services.NewContentQueryService(&stubQueryRepo{err: errors.New("connection reset")}, log.DefaultLogger)

	_, err := svc.ListContent(context.Background(), services.ContentListQuery{})
	require.True(t, services.IsReason(err, services.ReasonQueryFailed))
}
