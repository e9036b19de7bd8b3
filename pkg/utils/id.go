package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NewID returns a prefixed identifier, e.g. "item_V1StGXR8Z5jdHi6B".
func NewID(prefix string) string {
	return prefix + "_" + gonanoid.Must(16)
}
