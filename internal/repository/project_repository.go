package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/vissocial/pipeline/internal/models"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
	SetPublishEnabled(ctx context.Context, id string, enabled bool) error
	SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error
	ListExpiringTokens(ctx context.Context, from, to time.Time) ([]*models.Project, error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, ig_user_id, meta_access_token, token_expires_at, ig_publish_enabled, brand_profile, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	var igUserID, token sql.NullString
	var expiresAt sql.NullTime
	var brand []byte

	err := row.Scan(&p.ID, &p.Name, &igUserID, &token, &expiresAt, &p.IGPublishEnabled, &brand, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.IGUserID = igUserID.String
	p.MetaAccessToken = token.String
	if expiresAt.Valid {
		p.TokenExpiresAt = &expiresAt.Time
	}
	p.BrandProfile = brand

	return &p, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) SetPublishEnabled(ctx context.Context, id string, enabled bool) error {
	query := `
		UPDATE projects
		SET ig_publish_enabled = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, enabled, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *projectRepository) SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error {
	query := `
		UPDATE projects
		SET meta_access_token = $1,
			token_expires_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, encryptedToken, expiresAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *projectRepository) ListExpiringTokens(ctx context.Context, from, to time.Time) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE token_expires_at IS NOT NULL
		  AND token_expires_at BETWEEN $1 AND $2
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}
