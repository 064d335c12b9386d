// Package repositories 提供数据访问层实现，负责与持久化存储交互。
// 该层实现 Service 层定义的 Repository 接口，隔离底层存储细节。
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamspace/streamspace-services-content/internal/models/po"
	"github.com/streamspace/streamspace-services-content/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// contentRepo 是 services.ContentRepo 与 services.ContentQueryRepo 的实现。
// 使用 pgxpool.Pool 访问 PostgreSQL（Supabase）。
type contentRepo struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewContentRepo 构造内容目录仓储，通过 Wire 注入连接池与 logger。
func NewContentRepo(pool *pgxpool.Pool, logger log.Logger) *ContentRepository {
	return &ContentRepository{contentRepo{
		pool: pool,
		log:  log.NewHelper(logger),
	}}
}

// ContentRepository 对外暴露的具体类型，同时满足写路径与读路径接口。
type ContentRepository struct {
	contentRepo
}

// NewContentWriteRepo 以写接口形式暴露仓储。
func NewContentWriteRepo(r *ContentRepository) services.ContentRepo { return r }

// NewContentQueryRepo 以读接口形式暴露仓储。
func NewContentQueryRepo(r *ContentRepository) services.ContentQueryRepo { return r }

// Insert 在单个事务内写入内容记录与 Outbox 事件。
// 目录插入与 content.added 事件要么同时落库，要么一起回滚；
// 事件随后由发布任务异步投递。
func (r *contentRepo) Insert(ctx context.Context, c *po.Content, evt *po.OutboxEvent) (*po.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertContent = `
		INSERT INTO catalog.content (
			content_id, owner_id, title, description,
			file_url, thumbnail_url, content_type, duration_seconds, file_size_bytes,
			views_count, likes_count, comments_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, 0)
		RETURNING views_count, likes_count, comments_count, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insertContent,
		c.ContentID,
		c.OwnerID,
		c.Title,
		c.Description,
		c.FileURL,
		c.ThumbnailURL,
		c.ContentType,
		c.DurationSeconds,
		c.FileSizeBytes,
	).Scan(&c.ViewsCount, &c.LikesCount, &c.CommentsCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert content failed: content_id=%s err=%v", c.ContentID, err)
		return nil, fmt.Errorf("insert content: %w", err)
	}

	if evt != nil {
		const insertEvent = `
			INSERT INTO catalog.outbox_events (
				event_id, aggregate_type, aggregate_id, event_type,
				payload, status, attempts, available_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
		`
		if _, err := tx.Exec(ctx, insertEvent,
			evt.EventID,
			evt.AggregateType,
			evt.AggregateID,
			evt.EventType,
			evt.Payload,
			evt.Status,
			evt.AvailableAt,
		); err != nil {
			r.log.WithContext(ctx).Errorf("insert outbox event failed: event_id=%s err=%v", evt.EventID, err)
			return nil, fmt.Errorf("insert outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	r.log.WithContext(ctx).Infof("content inserted: content_id=%s type=%s", c.ContentID, c.ContentType)
	return c, nil
}

const contentColumns = `
	content_id, owner_id, title, description,
	file_url, thumbnail_url, content_type, duration_seconds, file_size_bytes,
	views_count, likes_count, comments_count, created_at, updated_at
`

// FindByID 根据 content_id 查询内容记录，查不到返回 ErrContentNotFound。
func (r *contentRepo) FindByID(ctx context.Context, contentID uuid.UUID) (*po.Content, error) {
	query := `SELECT` + contentColumns + `FROM catalog.content WHERE content_id = $1`

	row := r.pool.QueryRow(ctx, query, contentID)
	content, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrContentNotFound
		}
		r.log.WithContext(ctx).Errorf("find content failed: content_id=%s err=%v", contentID, err)
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return content, nil
}

// List 查询 Feed 列表。排序列是封闭集合，经白名单映射后拼入 SQL。
func (r *contentRepo) List(ctx context.Context, q services.ContentListQuery) ([]*po.Content, error) {
	orderBy := "created_at DESC"
	switch q.Sort {
	case services.SortPopular:
		orderBy = "likes_count DESC, created_at DESC"
	case services.SortTrending:
		orderBy = "views_count DESC, created_at DESC"
	}

	query := `SELECT` + contentColumns + `FROM catalog.content`
	args := make([]any, 0, 2)
	if q.ContentType != nil {
		query += ` WHERE content_type = $1`
		args = append(args, *q.ContentType)
	}
	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d`, orderBy, len(args)+1)
	args = append(args, q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list content failed: err=%v", err)
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []*po.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		items = append(items, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content rows: %w", err)
	}
	return items, nil
}

// rowScanner 统一 pgx.Row 与 pgx.Rows 的扫描入口。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*po.Content, error) {
	var c po.Content
	err := row.Scan(
		&c.ContentID,
		&c.OwnerID,
		&c.Title,
		&c.Description,
		&c.FileURL,
		&c.ThumbnailURL,
		&c.ContentType,
		&c.DurationSeconds,
		&c.FileSizeBytes,
		&c.ViewsCount,
		&c.LikesCount,
		&c.CommentsCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
