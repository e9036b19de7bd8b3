package models

import (
	"encoding/json"
	"time"
)

type Project struct {
	ID               string          `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	IGUserID         string          `db:"ig_user_id" json:"ig_user_id"`
	MetaAccessToken  string          `db:"meta_access_token" json:"-"`
	TokenExpiresAt   *time.Time      `db:"token_expires_at" json:"token_expires_at"`
	IGPublishEnabled bool            `db:"ig_publish_enabled" json:"ig_publish_enabled"`
	BrandProfile     json.RawMessage `db:"brand_profile" json:"brand_profile"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
