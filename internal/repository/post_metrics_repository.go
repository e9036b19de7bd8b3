package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/vissocial/pipeline/internal/models"
)

type PostMetricsRepository interface {
	Create(ctx context.Context, metrics *models.PostMetrics) error
	ListByItemID(ctx context.Context, itemID string) ([]*models.PostMetrics, error)
}

type postMetricsRepository struct {
	db *sql.DB
}

func NewPostMetricsRepository(db *sql.DB) PostMetricsRepository {
	return &postMetricsRepository{db: db}
}

func (r *postMetricsRepository) Create(ctx context.Context, metrics *models.PostMetrics) error {
	data, err := json.Marshal(metrics.Metrics)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO post_metrics (id, project_id, content_item_id, "window", metrics, reward_01)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query, metrics.ID, metrics.ProjectID, metrics.ContentItemID, metrics.Window, data, metrics.Reward)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postMetricsRepository) ListByItemID(ctx context.Context, itemID string) ([]*models.PostMetrics, error) {
	query := `
		SELECT id, project_id, content_item_id, "window", metrics, reward_01, created_at
		FROM post_metrics
		WHERE content_item_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []*models.PostMetrics
	for rows.Next() {
		var pm models.PostMetrics
		var metrics []byte
		err := rows.Scan(&pm.ID, &pm.ProjectID, &pm.ContentItemID, &pm.Window, &metrics, &pm.Reward, &pm.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &pm.Metrics); err != nil {
				return nil, err
			}
		}
		result = append(result, &pm)
	}
	return result, nil
}
