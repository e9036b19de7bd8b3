package models

import "time"

// ItemUpdate is a field mask for review edits. Nil fields are left untouched.
type ItemUpdate struct {
	Status        *string    `json:"status"`
	CaptionLong   *string    `json:"caption_long"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	PublishMode   *string    `json:"publish_mode"`
	PublishStatus *string    `json:"publish_status"`
}

func (u *ItemUpdate) Empty() bool {
	return u.Status == nil && u.CaptionLong == nil && u.ScheduledAt == nil &&
		u.PublishMode == nil && u.PublishStatus == nil
}
