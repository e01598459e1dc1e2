// Package audit implements the append-only audit trail recorder and the
// owner-facing dashboard query.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/repository"
)

const (
	ActionFileUploaded          = "FILE_UPLOADED"
	ActionFileDownloaded        = "FILE_DOWNLOADED"
	ActionFileDeleted           = "FILE_DELETED"
	ActionShareLinkCreated      = "SHARE_LINK_CREATED"
	ActionSharePasswordVerified = "SHARE_PASSWORD_VERIFIED"
	ActionSharedFileDownloaded  = "SHARED_FILE_DOWNLOADED"
)

const dashboardLimit = 50

// Event is one security-relevant occurrence. UserID is nil for anonymous
// public actions.
type Event struct {
	UserID   *uuid.UUID
	Action   string
	FileID   *uuid.UUID
	IP       string
	Metadata map[string]any
}

// Recorder appends audit entries. Write failures are logged and swallowed:
// a failed audit write must not abort the file operation that triggered it.
type Recorder struct {
	repo repository.AuditLogRepository
}

func NewRecorder(repo repository.AuditLogRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Record(ctx context.Context, ev Event) {
	entry := &models.AuditLog{
		UserID:    ev.UserID,
		Action:    ev.Action,
		FileID:    ev.FileID,
		IPAddress: ev.IP,
	}
	if ev.Metadata != nil {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			log.Error().Err(err).Str("action", ev.Action).Msg("audit metadata not serializable")
		} else {
			entry.Metadata = string(raw)
		}
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
	}
}

// ListForOwner returns the newest dashboard entries for the given owner:
// their own actions plus anonymous actions against their files.
func (r *Recorder) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AuditLog, error) {
	return r.repo.FindForOwner(ctx, ownerID, dashboardLimit)
}
