package policy

import "encoding/json"

// ArmParams is the closed parameter bundle a selection arm carries. The
// fields are enumerated on purpose so the contract with the policy service
// stays checkable instead of drifting behind an open map.
type ArmParams struct {
	Format        string  `json:"format"`
	Pillar        string  `json:"pillar"`
	HookType      string  `json:"hook_type"`
	CaptionLength string  `json:"caption_length"`
	CTAType       string  `json:"cta_type"`
	SceneTemplate string  `json:"scene_template"`
	PromoLevel    float64 `json:"promo_level"`
}

type Arm struct {
	ArmID       string          `json:"arm_id"`
	Params      ArmParams       `json:"arm_params"`
	PolicyState json.RawMessage `json:"policy_state"`
}

// Context is sent with every choose request so the policy can condition on
// the slot being planned.
type Context struct {
	SlotIndex int    `json:"slot_index"`
	Month     string `json:"month"`
}

type UpdateMeta struct {
	ContentItemID string `json:"content_item_id"`
	Window        string `json:"window"`
}
