package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vissocial/pipeline/internal/models"
)

type ContentPackRepository interface {
	Create(ctx context.Context, pack *models.ContentPack) error
	GetByID(ctx context.Context, id string) (*models.ContentPack, error)
	GetLatestByProjectID(ctx context.Context, projectID string) (*models.ContentPack, error)
}

type contentPackRepository struct {
	db *sql.DB
}

func NewContentPackRepository(db *sql.DB) ContentPackRepository {
	return &contentPackRepository{db: db}
}

func (r *contentPackRepository) Create(ctx context.Context, pack *models.ContentPack) error {
	query := `
		INSERT INTO content_packs (id, project_id, month)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, pack.ID, pack.ProjectID, pack.Month)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentPackRepository) GetByID(ctx context.Context, id string) (*models.ContentPack, error) {
	query := `SELECT id, project_id, month, created_at FROM content_packs WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var pack models.ContentPack
	err := row.Scan(&pack.ID, &pack.ProjectID, &pack.Month, &pack.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &pack, nil
}

func (r *contentPackRepository) GetLatestByProjectID(ctx context.Context, projectID string) (*models.ContentPack, error) {
	query := `
		SELECT id, project_id, month, created_at
		FROM content_packs
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, projectID)

	var pack models.ContentPack
	err := row.Scan(&pack.ID, &pack.ProjectID, &pack.Month, &pack.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &pack, nil
}
