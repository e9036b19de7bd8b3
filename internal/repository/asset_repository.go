package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vissocial/pipeline/internal/models"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	ListReferences(ctx context.Context, projectID string, limit int) ([]*models.Asset, error)
	ExistsByURL(ctx context.Context, projectID, url string) (bool, error)
}

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, project_id, url, label)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, asset.ID, asset.ProjectID, asset.URL, asset.Label)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ListReferences returns generation references ordered product-first so
// @image indices in composed prompts stay stable.
func (r *assetRepository) ListReferences(ctx context.Context, projectID string, limit int) ([]*models.Asset, error) {
	query := `
		SELECT id, project_id, url, label, created_at
		FROM assets
		WHERE project_id = $1
		  AND label IN ($2, $3, $4)
		ORDER BY
			CASE label
				WHEN $2 THEN 1
				WHEN $3 THEN 2
				WHEN $4 THEN 3
			END,
			created_at DESC
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query, projectID,
		models.AssetLabelProductReference, models.AssetLabelStyleReference,
		models.AssetLabelCharacterReference, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.URL, &a.Label, &a.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, &a)
	}
	return assets, nil
}

func (r *assetRepository) ExistsByURL(ctx context.Context, projectID, url string) (bool, error) {
	query := `SELECT 1 FROM assets WHERE project_id = $1 AND url = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, projectID, url).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}
