package models

import "time"

// RenderOutputs is the artifact payload stored on a render row. On a failed
// render only Error (and the inputs used) are populated.
type RenderOutputs struct {
	URL       string   `json:"url,omitempty"`
	ModelUsed string   `json:"model_used,omitempty"`
	Refs      []string `json:"refs,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type Render struct {
	ID            string        `db:"id" json:"id"`
	ContentItemID string        `db:"content_item_id" json:"content_item_id"`
	Status        string        `db:"status" json:"status"`
	Outputs       RenderOutputs `db:"outputs" json:"outputs"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

const (
	RenderStatusRunning   = "running"
	RenderStatusSucceeded = "succeeded"
	RenderStatusFailed    = "failed"
)
