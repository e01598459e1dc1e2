package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/securevault/securevault-backend/auth/middleware"
	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/vault"
)

// FileService is the slice of the lifecycle manager the file handlers use.
type FileService interface {
	Upload(ctx context.Context, in vault.UploadInput) (*models.File, error)
	Download(ctx context.Context, callerID, fileID uuid.UUID, ip string) (*vault.Download, error)
	Delete(ctx context.Context, callerID, fileID uuid.UUID, ip string) error
	List(ctx context.Context, ownerID uuid.UUID) ([]models.File, error)
}

type FileHandler struct {
	files FileService
}

func NewFileHandler(files FileService) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, &common.OpError{Op: "upload", Stage: "stage", Err: err})
		return
	}
	defer src.Close()

	file, err := h.files.Upload(c.Request.Context(), vault.UploadInput{
		OwnerID:  userID,
		Filename: fileHeader.Filename,
		Content:  src,
		IP:       c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded and encrypted successfully",
		"file":    file,
	})
}

func (h *FileHandler) Download(c *gin.Context) {
	userID := middleware.UserID(c)

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	dl, err := h.files.Download(c.Request.Context(), userID, fileID, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	defer dl.Cleanup()

	c.FileAttachment(dl.Path, dl.Filename)
}

func (h *FileHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	files, err := h.files.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	if err := h.files.Delete(c.Request.Context(), userID, fileID, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
