// Package localstore is the on-device persistence port used by guest mode:
// a flat key-value namespace with read-after-write consistency and
// last-write-wins semantics.
package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"kilnlog-backend/internal/core"
)

// Store is the storage port. Implementations must be safe for concurrent
// callers; Get after a completed Set observes the written value.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

const (
	keyGuestPieces       = "guest/pieces"
	keyGuestInspirations = "guest/inspirations"
	keyGuestLinks        = "guest/links"
)

// GuestLink associates two locally stored guest entities by their local ids.
type GuestLink struct {
	PieceID       uuid.UUID `json:"piece_id"`
	InspirationID uuid.UUID `json:"inspiration_id"`
}

// GuestData is everything a guest session keeps on device.
type GuestData struct {
	Pieces       []core.Piece       `json:"pieces"`
	Inspirations []core.Inspiration `json:"inspirations"`
	Links        []GuestLink        `json:"links"`
}

// LoadGuestData reads the guest collections from the store. Missing keys
// yield empty collections, not an error.
func LoadGuestData(s Store) (*GuestData, error) {
	var data GuestData
	if err := loadJSON(s, keyGuestPieces, &data.Pieces); err != nil {
		return nil, err
	}
	if err := loadJSON(s, keyGuestInspirations, &data.Inspirations); err != nil {
		return nil, err
	}
	if err := loadJSON(s, keyGuestLinks, &data.Links); err != nil {
		return nil, err
	}
	return &data, nil
}

// SaveGuestData writes the guest collections back to the store.
func SaveGuestData(s Store, data *GuestData) error {
	if err := saveJSON(s, keyGuestPieces, data.Pieces); err != nil {
		return err
	}
	if err := saveJSON(s, keyGuestInspirations, data.Inspirations); err != nil {
		return err
	}
	return saveJSON(s, keyGuestLinks, data.Links)
}

func loadJSON(s Store, key string, out any) error {
	raw, ok, err := s.Get(key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func saveJSON(s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
