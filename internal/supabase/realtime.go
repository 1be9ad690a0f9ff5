package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// Database writes trigger Supabase Realtime on their own; this hook
	// exists for explicit publishes via the Realtime REST API if we ever
	// need them.
	return nil
}

func (r *RealtimeClient) PublishPieceEvent(pieceID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("piece:%s", pieceID.String())
	return r.PublishEvent(channel, event, payload)
}

func (r *RealtimeClient) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func PieceAdvancedPayload(pieceID uuid.UUID, stage string) map[string]interface{} {
	return map[string]interface{}{
		"piece_id":      pieceID.String(),
		"current_stage": stage,
	}
}

func LinksSyncedPayload(pieceID uuid.UUID, added, removed, failed int) map[string]interface{} {
	return map[string]interface{}{
		"piece_id": pieceID.String(),
		"added":    added,
		"removed":  removed,
		"failed":   failed,
	}
}

func MigrationCompletedPayload(userID uuid.UUID, migrated, failed int) map[string]interface{} {
	return map[string]interface{}{
		"user_id":  userID.String(),
		"migrated": migrated,
		"failed":   failed,
	}
}
