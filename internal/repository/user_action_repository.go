package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vissocial/pipeline/internal/models"
)

type UserActionRepository interface {
	Create(ctx context.Context, action *models.UserAction) error
	ListByItemID(ctx context.Context, itemID string) ([]*models.UserAction, error)
}

type userActionRepository struct {
	db *sql.DB
}

func NewUserActionRepository(db *sql.DB) UserActionRepository {
	return &userActionRepository{db: db}
}

func (r *userActionRepository) Create(ctx context.Context, action *models.UserAction) error {
	query := `
		INSERT INTO user_actions (id, project_id, content_item_id, action_type, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, action.ID, action.ProjectID, action.ContentItemID, action.ActionType, []byte(action.Payload))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userActionRepository) ListByItemID(ctx context.Context, itemID string) ([]*models.UserAction, error) {
	query := `
		SELECT id, project_id, content_item_id, action_type, payload, created_at
		FROM user_actions
		WHERE content_item_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var actions []*models.UserAction
	for rows.Next() {
		var a models.UserAction
		var payload []byte
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.ContentItemID, &a.ActionType, &payload, &a.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		a.Payload = payload
		actions = append(actions, &a)
	}
	return actions, nil
}
