package activity

import (
	"context"
	"encoding/json"
	"log"

	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/google/uuid"
)

// Store persists activity entries.
type Store interface {
	Create(ctx context.Context, activity *model.Activity) error
}

// Recorder appends one audit entry per mutation and announces it to the
// board's live viewers. Recording is auxiliary to the mutation itself:
// every failure here is logged and swallowed so an already-committed
// write can never be failed by its audit trail.
type Recorder struct {
	store Store
	hub   realtime.Publisher
}

func NewRecorder(store Store, hub realtime.Publisher) *Recorder {
	return &Recorder{store: store, hub: hub}
}

func (r *Recorder) Record(ctx context.Context, boardID, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, entityTitle string, details map[string]interface{}) {
	detailsJSON := "{}"
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("⚠️  Failed to encode activity details for %s: %v", action, err)
		} else {
			detailsJSON = string(b)
		}
	}

	entry := &model.Activity{
		BoardID:     boardID,
		UserID:      actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityTitle: entityTitle,
		Details:     detailsJSON,
	}

	if err := r.store.Create(ctx, entry); err != nil {
		log.Printf("⚠️  Failed to log activity %s: %v", action, err)
		return
	}

	r.hub.ToBoard(boardID, "activity:new", entry)
}
