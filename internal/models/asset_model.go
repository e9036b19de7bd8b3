package models

import "time"

type Asset struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	URL       string    `db:"url" json:"url"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	AssetLabelProductReference   = "product_reference"
	AssetLabelStyleReference     = "style_reference"
	AssetLabelCharacterReference = "character_reference"
	AssetLabelIngested           = "ingested"
)
