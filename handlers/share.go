package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/securevault/securevault-backend/auth/middleware"
	"github.com/securevault/securevault-backend/vault"
)

const qrSize = 256

// ShareService is the slice of the share-link state machine the handlers
// use.
type ShareService interface {
	Create(ctx context.Context, in vault.CreateShareInput) (*vault.CreatedShare, error)
	Verify(ctx context.Context, token, password, ip string) (*vault.VerifyResult, error)
	Consume(ctx context.Context, token, accessToken, ip string) (*vault.Download, error)
	Validate(ctx context.Context, token string) error
	ShareURL(token string) string
}

type ShareHandler struct {
	shares ShareService
}

func NewShareHandler(shares ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// Create mints a share link for a file the caller owns.
func (h *ShareHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	var body struct {
		ExpiryMinutes int    `json:"expiryMinutes"`
		Password      string `json:"password"`
		UnlockMinutes int    `json:"unlockMinutes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	share, err := h.shares.Create(c.Request.Context(), vault.CreateShareInput{
		OwnerID:       userID,
		FileID:        fileID,
		ExpiryMinutes: body.ExpiryMinutes,
		Password:      body.Password,
		UnlockMinutes: body.UnlockMinutes,
		IP:            c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Share link created",
		"shareUrl":          share.ShareURL,
		"expiresAt":         share.ExpiresAt,
		"passwordProtected": share.PasswordProtected,
		"unlockMinutes":     share.UnlockMinutes,
	})
}

// Verify checks the share password and, for protected links, returns the
// one-time download token.
func (h *ShareHandler) Verify(c *gin.Context) {
	token := c.Param("token")

	var body struct {
		Password string `json:"password"`
	}
	// a missing body is the same as a missing password
	_ = c.ShouldBindJSON(&body)

	result, err := h.shares.Verify(c.Request.Context(), token, body.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	if result.DownloadToken == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "No password required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"message":         "Password verified",
		"downloadToken":   result.DownloadToken,
		"validForMinutes": result.ValidForMinutes,
	})
}

// Download streams the shared file to an anonymous caller. Password-gated
// links require the one-time token in the access query parameter.
func (h *ShareHandler) Download(c *gin.Context) {
	token := c.Param("token")
	access := c.Query("access")

	dl, err := h.shares.Consume(c.Request.Context(), token, access, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	defer dl.Cleanup()

	c.FileAttachment(dl.Path, dl.Filename)
}

// QRCode renders the share URL as a PNG for out-of-band delivery.
func (h *ShareHandler) QRCode(c *gin.Context) {
	token := c.Param("token")

	if err := h.shares.Validate(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	png, err := qrcode.Encode(h.shares.ShareURL(token), qrcode.Medium, qrSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
