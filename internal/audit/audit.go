// internal/audit/audit.go
package audit

import (
	"context"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
)

// Recorder appends audit entries. Callers invoke Record inside their own
// transaction context so the trail can never diverge from committed state.
type Recorder struct {
	store store.Store
}

func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s}
}

func (r *Recorder) Record(ctx context.Context, actor, action, entityType, entityID string, details models.AuditDetails) error {
	return r.store.InsertAudit(ctx, &models.AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	})
}
