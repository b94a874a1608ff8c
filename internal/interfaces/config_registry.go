package interfaces

import "context"

// ConfigRegistry serves typed configuration reads of persisted ConfigEntry
// overrides, falling back to the caller-supplied value when a key has no
// override, and invalidating its cache whenever an override is written.
type ConfigRegistry interface {
	GetString(ctx context.Context, key, fallback string) string
	GetInt(ctx context.Context, key string, fallback int) int
	GetBool(ctx context.Context, key string, fallback bool) bool
	GetFloat(ctx context.Context, key string, fallback float64) float64
	Set(ctx context.Context, key, value, updatedBy string) error
	InvalidateCache()
}
