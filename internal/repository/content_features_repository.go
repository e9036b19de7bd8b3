package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vissocial/pipeline/internal/models"
)

type ContentFeaturesRepository interface {
	Upsert(ctx context.Context, features *models.ContentFeatures) error
	GetByItemID(ctx context.Context, itemID string) (*models.ContentFeatures, error)
}

type contentFeaturesRepository struct {
	db *sql.DB
}

func NewContentFeaturesRepository(db *sql.DB) ContentFeaturesRepository {
	return &contentFeaturesRepository{db: db}
}

// Upsert is keyed by item id so re-running a plan slot never leaves a
// duplicate arm binding behind.
func (r *contentFeaturesRepository) Upsert(ctx context.Context, features *models.ContentFeatures) error {
	query := `
		INSERT INTO content_features (content_item_id, project_id, arm_id, features)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_item_id)
		DO UPDATE SET arm_id = EXCLUDED.arm_id, features = EXCLUDED.features
	`
	_, err := r.db.ExecContext(ctx, query, features.ContentItemID, features.ProjectID, features.ArmID, []byte(features.Features))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentFeaturesRepository) GetByItemID(ctx context.Context, itemID string) (*models.ContentFeatures, error) {
	query := `SELECT content_item_id, project_id, arm_id, features FROM content_features WHERE content_item_id = $1`
	row := r.db.QueryRowContext(ctx, query, itemID)

	var cf models.ContentFeatures
	var features []byte
	err := row.Scan(&cf.ContentItemID, &cf.ProjectID, &cf.ArmID, &features)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	cf.Features = features

	return &cf, nil
}
