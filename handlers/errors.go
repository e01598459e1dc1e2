package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/securevault/securevault-backend/common"
)

// respondError maps service errors onto the public status classes. The 4xx
// messages are authored by the services and safe to echo; everything else
// is logged in full and answered with a generic message so internal detail
// (remote error bodies, paths, stack context) never reaches the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrGone):
		c.JSON(http.StatusGone, gin.H{"error": "Share link expired"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		var op *common.OpError
		if errors.As(err, &op) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": op.Op + " failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
