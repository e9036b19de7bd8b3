package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vissocial/pipeline/internal/models"
)

type RenderRepository interface {
	Create(ctx context.Context, render *models.Render) error
	GetByID(ctx context.Context, id string) (*models.Render, error)
	Finalize(ctx context.Context, id, status string, outputs models.RenderOutputs) error
	LatestSucceeded(ctx context.Context, itemID string) (*models.Render, error)
	ListByItemID(ctx context.Context, itemID string) ([]*models.Render, error)
}

type renderRepository struct {
	db *sql.DB
}

func NewRenderRepository(db *sql.DB) RenderRepository {
	return &renderRepository{db: db}
}

func (r *renderRepository) Create(ctx context.Context, render *models.Render) error {
	query := `
		INSERT INTO renders (id, content_item_id, status)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, render.ID, render.ContentItemID, render.Status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func scanRender(row interface{ Scan(...any) error }) (*models.Render, error) {
	var render models.Render
	var outputs []byte
	err := row.Scan(&render.ID, &render.ContentItemID, &render.Status, &outputs, &render.CreatedAt, &render.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(outputs) > 0 {
		if err := json.Unmarshal(outputs, &render.Outputs); err != nil {
			return nil, err
		}
	}
	return &render, nil
}

func (r *renderRepository) GetByID(ctx context.Context, id string) (*models.Render, error) {
	query := `SELECT id, content_item_id, status, outputs, created_at, updated_at FROM renders WHERE id = $1`
	render, err := scanRender(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return render, nil
}

// Finalize moves a running render to its terminal status. Renders are never
// mutated afterwards.
func (r *renderRepository) Finalize(ctx context.Context, id, status string, outputs models.RenderOutputs) error {
	data, err := json.Marshal(outputs)
	if err != nil {
		return err
	}

	query := `
		UPDATE renders
		SET status = $1,
			outputs = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err = r.db.ExecContext(ctx, query, status, data, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// LatestSucceeded returns the authoritative render for publish and export:
// the most recently updated succeeded attempt.
func (r *renderRepository) LatestSucceeded(ctx context.Context, itemID string) (*models.Render, error) {
	query := `
		SELECT id, content_item_id, status, outputs, created_at, updated_at
		FROM renders
		WHERE content_item_id = $1 AND status = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`
	render, err := scanRender(r.db.QueryRowContext(ctx, query, itemID, models.RenderStatusSucceeded))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return render, nil
}

func (r *renderRepository) ListByItemID(ctx context.Context, itemID string) ([]*models.Render, error) {
	query := `
		SELECT id, content_item_id, status, outputs, created_at, updated_at
		FROM renders
		WHERE content_item_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var renders []*models.Render
	for rows.Next() {
		render, err := scanRender(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		renders = append(renders, render)
	}
	return renders, nil
}
