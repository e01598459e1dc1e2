package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/securevault/securevault-backend/auth/middleware"
	"github.com/securevault/securevault-backend/models"
)

// AuditTrail is the dashboard-facing slice of the audit recorder.
type AuditTrail interface {
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AuditLog, error)
}

type AuditHandler struct {
	trail AuditTrail
}

func NewAuditHandler(trail AuditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// Logs returns the caller's audit dashboard: their own actions plus
// anonymous actions against their files, newest first.
func (h *AuditHandler) Logs(c *gin.Context) {
	userID := middleware.UserID(c)

	logs, err := h.trail.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
