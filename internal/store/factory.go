package store

import (
	"fmt"

	"intake-go/internal/config"
	"intake-go/internal/tracker"
)

// NewStoreFromConfig creates a Store implementation based on the store config type.
func NewStoreFromConfig(cfg config.StoreConfig) (tracker.Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSQLiteStore()
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
