package models

import (
	"encoding/json"
	"time"
)

// UserAction records one logically distinct review edit (approve, caption
// change, reschedule) with before/after snapshots, feeding the learning loop.
type UserAction struct {
	ID            string          `db:"id" json:"id"`
	ProjectID     string          `db:"project_id" json:"project_id"`
	ContentItemID string          `db:"content_item_id" json:"content_item_id"`
	ActionType    string          `db:"action_type" json:"action_type"`
	Payload       json.RawMessage `db:"payload" json:"payload"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

const (
	ActionApprove       = "approve"
	ActionUnapprove     = "unapprove"
	ActionCaptionEdit   = "caption_edit"
	ActionSchedule      = "schedule"
	ActionPublishStatus = "publish_status"
)
