package repositories_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/repositories"
	"github.com/streamspace/streamspace-services-content/internal/services"

	"github.com/docker/go-connections/nat"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "catalog",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://postgres:postgres@%s:%s/catalog?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip integration: cannot start postgres container: %v", err)
		return "", func() {}
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/catalog?sslmode=disable", host, port.Port())
	cleanup := func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	}
	return dsn, cleanup
}

func applyAllMigrations(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	files, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".sql" {
			continue
		}
		paths = append(paths, filepath.Join(migrationsDir, f.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		sqlBytes, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		_, execErr := pool.Exec(ctx, string(sqlBytes))
		require.NoErrorf(t, execErr, "apply migration %s", filepath.Base(path))
	}
}

func newTestPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn, terminate := startPostgres(ctx, t)
	t.Cleanup(terminate)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applyAllMigrations(ctx, t, pool)
	return pool
}

func insertContent(ctx context.Context, t *testing.T, repo *repositories.ContentRepository, contentType po.ContentType, title string) *po.Content {
	t.Helper()

	duration := int32(42)
	record := &po.Content{
		ContentID:       uuid.New(),
		OwnerID:         uuid.New(),
		Title:           title,
		FileURL:         "https://storage.googleapis.com/media/" + uuid.NewString(),
		ContentType:     contentType,
		FileSizeBytes:   1024,
		DurationSeconds: &duration,
	}
	if contentType == po.ContentTypeImage {
		record.DurationSeconds = nil
	}

	evt := &po.OutboxEvent{
		EventID:       uuid.New(),
		AggregateType: "content",
		AggregateID:   record.ContentID,
		EventType:     "content.added",
		Payload:       []byte(fmt.Sprintf(`{"content_id":%q}`, record.ContentID)),
		Status:        po.OutboxStatusPending,
		AvailableAt:   time.Now().UTC(),
	}

	inserted, err := repo.Insert(ctx, record, evt)
	require.NoError(t, err)
	return inserted
}

func TestContentRepositoryInsertAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)
	repo := repositories.NewContentRepo(pool, logger)

	inserted := insertContent(ctx, t, repo, po.ContentTypeShort, "Sunrise Clip")

	require.Zero(t, inserted.ViewsCount)
	require.Zero(t, inserted.LikesCount)
	require.Zero(t, inserted.CommentsCount)
	require.False(t, inserted.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, inserted.ContentID)
	require.NoError(t, err)
	require.Equal(t, inserted.ContentID, found.ContentID)
	require.Equal(t, "Sunrise Clip", found.Title)
	require.Equal(t, po.ContentTypeShort, found.ContentType)
	require.NotNil(t, found.DurationSeconds)
	require.Equal(t, int32(42), *found.DurationSeconds)

	_, err = repo.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, services.ErrContentNotFound)
}

func TestContentRepositoryList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)
	repo := repositories.NewContentRepo(pool, logger)

	first := insertContent(ctx, t, repo, po.ContentTypeVideo, "First")
	time.Sleep(20 * time.Millisecond)
	second := insertContent(ctx, t, repo, po.ContentTypeImage, "Second")
	time.Sleep(20 * time.Millisecond)
	third := insertContent(ctx, t, repo, po.ContentTypeVideo, "Third")

	// popular/trending 排序依赖计数器
	_, err := pool.Exec(ctx, `UPDATE catalog.content SET likes_count = 10 WHERE content_id = $1`, first.ContentID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE catalog.content SET views_count = 99 WHERE content_id = $1`, second.ContentID)
	require.NoError(t, err)

	latest, err := repo.List(ctx, services.ContentListQuery{Sort: services.SortLatest, Limit: 10})
	require.NoError(t, err)
	require.Len(t, latest, 3)
	require.Equal(t, third.ContentID, latest[0].ContentID)

	popular, err := repo.List(ctx, services.ContentListQuery{Sort: services.SortPopular, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, first.ContentID, popular[0].ContentID)

	trending, err := repo.List(ctx, services.ContentListQuery{Sort: services.SortTrending, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, second.ContentID, trending[0].ContentID)

	videoType := po.ContentTypeVideo
	videos, err := repo.List(ctx, services.ContentListQuery{ContentType: &videoType, Sort: services.SortLatest, Limit: 10})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for _, item := range videos {
		require.Equal(t, po.ContentTypeVideo, item.ContentType)
	}

	limited, err := repo.List(ctx, services.ContentListQuery{Sort: services.SortLatest, Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestOutboxRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)
	contentRepo := repositories.NewContentRepo(pool, logger)
	outboxRepo := repositories.NewOutboxRepository(pool, logger)

	inserted := insertContent(ctx, t, contentRepo, po.ContentTypeImage, "With Event")

	due, err := outboxRepo.FetchDue(ctx, 10, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, due, 1)
	evt := due[0]
	require.Equal(t, inserted.ContentID, evt.AggregateID)
	require.Equal(t, "content.added", evt.EventType)
	require.Equal(t, po.OutboxStatusPending, evt.Status)

	// 重试：推迟 available_at 后在当前时刻不可见
	next := time.Now().UTC().Add(time.Minute)
	require.NoError(t, outboxRepo.MarkRetry(ctx, evt.EventID, next, "publish timeout"))
	due, err = outboxRepo.FetchDue(ctx, 10, time.Now().UTC())
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = outboxRepo.FetchDue(ctx, 10, next.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, int32(1), due[0].Attempts)
	require.NotNil(t, due[0].LastError)

	// 发布成功后事件离开 pending 集合
	require.NoError(t, outboxRepo.MarkPublished(ctx, evt.EventID, time.Now().UTC()))
	due, err = outboxRepo.FetchDue(ctx, 10, next.Add(time.Second))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestOutboxRepositoryMarkFailed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)
	contentRepo := repositories.NewContentRepo(pool, logger)
	outboxRepo := repositories.NewOutboxRepository(pool, logger)

	insertContent(ctx, t, contentRepo, po.ContentTypeImage, "Doomed Event")

	due, err := outboxRepo.FetchDue(ctx, 10, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, outboxRepo.MarkFailed(ctx, due[0].EventID, "topic does not exist"))
	due, err = outboxRepo.FetchDue(ctx, 10, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, due, "failed events must not be retried")
}
