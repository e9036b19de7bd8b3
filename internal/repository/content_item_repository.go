package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vissocial/pipeline/internal/models"
)

type ContentItemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	ListByPackID(ctx context.Context, packID string) ([]*models.ContentItem, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ContentItem, error)
	ListPublished(ctx context.Context, projectID string, limit int) ([]*models.PublishedItem, error)
	UpdateReview(ctx context.Context, id string, upd *models.ItemUpdate) error
	SetPublished(ctx context.Context, id, creationID, mediaID string) error
	SetPublishStatus(ctx context.Context, status, id string) error
}

type contentItemRepository struct {
	db *sql.DB
}

func NewContentItemRepository(db *sql.DB) ContentItemRepository {
	return &contentItemRepository{db: db}
}

const contentItemColumns = `id, content_pack_id, project_id, day, format, topic, caption, visual_brief,
	status, publish_mode, publish_status, scheduled_at, ig_creation_id, ig_media_id, published_at,
	created_at, updated_at`

func scanContentItem(row interface{ Scan(...any) error }) (*models.ContentItem, error) {
	var item models.ContentItem
	var caption, brief []byte
	var scheduledAt, publishedAt sql.NullTime
	var creationID, mediaID sql.NullString

	err := row.Scan(
		&item.ID, &item.ContentPackID, &item.ProjectID, &item.Day, &item.Format, &item.Topic,
		&caption, &brief, &item.Status, &item.PublishMode, &item.PublishStatus,
		&scheduledAt, &creationID, &mediaID, &publishedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(caption) > 0 {
		if err := json.Unmarshal(caption, &item.Caption); err != nil {
			return nil, err
		}
	}
	if len(brief) > 0 {
		if err := json.Unmarshal(brief, &item.VisualBrief); err != nil {
			return nil, err
		}
	}
	if scheduledAt.Valid {
		item.ScheduledAt = &scheduledAt.Time
	}
	if publishedAt.Valid {
		item.PublishedAt = &publishedAt.Time
	}
	item.IGCreationID = creationID.String
	item.IGMediaID = mediaID.String

	return &item, nil
}

func (r *contentItemRepository) Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error {
	caption, err := json.Marshal(item.Caption)
	if err != nil {
		return err
	}
	brief, err := json.Marshal(item.VisualBrief)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO content_items (id, content_pack_id, project_id, day, format, topic, caption, visual_brief, status, publish_mode, publish_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	args := []any{
		item.ID, item.ContentPackID, item.ProjectID, item.Day, item.Format, item.Topic,
		caption, brief, item.Status, item.PublishMode, item.PublishStatus,
	}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE id = $1`
	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return item, nil
}

func (r *contentItemRepository) ListByPackID(ctx context.Context, packID string) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE content_pack_id = $1 ORDER BY day ASC`
	rows, err := r.db.QueryContext(ctx, query, packID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListDue returns scheduled items whose time has come, oldest first. The
// batch is capped so a backlog never floods the publish queue in one tick.
func (r *contentItemRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ContentItem, error) {
	query := `
		SELECT ` + contentItemColumns + `
		FROM content_items
		WHERE publish_mode IN ($1, $2)
		  AND publish_status = $3
		  AND scheduled_at <= $4
		ORDER BY scheduled_at ASC
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query,
		models.PublishModeInAppSchedule, models.PublishModeAutoPublish,
		models.PublishStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *contentItemRepository) ListPublished(ctx context.Context, projectID string, limit int) ([]*models.PublishedItem, error) {
	query := `
		SELECT ci.id, ci.ig_media_id, cp.month, COALESCE(cf.arm_id, '')
		FROM content_items ci
		JOIN content_packs cp ON ci.content_pack_id = cp.id
		LEFT JOIN content_features cf ON cf.content_item_id = ci.id
		WHERE ci.project_id = $1
		  AND ci.publish_status = $2
		  AND ci.ig_media_id IS NOT NULL
		ORDER BY ci.published_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, projectID, models.PublishStatusPublished, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.PublishedItem
	for rows.Next() {
		var it models.PublishedItem
		if err := rows.Scan(&it.ID, &it.IGMediaID, &it.Month, &it.ArmID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, &it)
	}
	return items, nil
}

func (r *contentItemRepository) UpdateReview(ctx context.Context, id string, upd *models.ItemUpdate) error {
	sets := []string{}
	args := []any{}
	i := 1

	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", i))
		args = append(args, *upd.Status)
		i++
	}
	if upd.CaptionLong != nil {
		sets = append(sets, fmt.Sprintf("caption = jsonb_set(caption, '{long}', to_jsonb($%d::text), true)", i))
		args = append(args, *upd.CaptionLong)
		i++
	}
	if upd.ScheduledAt != nil {
		sets = append(sets, fmt.Sprintf("scheduled_at = $%d", i))
		args = append(args, *upd.ScheduledAt)
		i++
	}
	if upd.PublishMode != nil {
		sets = append(sets, fmt.Sprintf("publish_mode = $%d", i))
		args = append(args, *upd.PublishMode)
		i++
	}
	if upd.PublishStatus != nil {
		sets = append(sets, fmt.Sprintf("publish_status = $%d", i))
		args = append(args, *upd.PublishStatus)
		i++
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE content_items SET %s WHERE id = $%d", strings.Join(sets, ", "), i)
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) SetPublished(ctx context.Context, id, creationID, mediaID string) error {
	query := `
		UPDATE content_items
		SET ig_creation_id = $1,
			ig_media_id = $2,
			publish_status = $3,
			published_at = $4,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, creationID, mediaID, models.PublishStatusPublished, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) SetPublishStatus(ctx context.Context, status, id string) error {
	query := `
		UPDATE content_items
		SET publish_status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
