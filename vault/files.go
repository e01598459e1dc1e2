// Package vault contains the core of the service: the encrypted-file
// lifecycle manager and the share-link state machine. Both orchestrate the
// crypto codec, the object-storage gateway, local staging and the metadata
// store, and emit audit events.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/securevault/securevault-backend/audit"
	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/encryption"
	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/repository"
	"github.com/securevault/securevault-backend/storage"
)

// FileService orchestrates upload, download, delete and listing of a user's
// encrypted files.
type FileService struct {
	files  repository.FileRepository
	shares repository.ShareLinkRepository
	codec  *encryption.Codec
	store  storage.ObjectStore
	trail  *audit.Recorder
	tmp    *TempDir
}

func NewFileService(
	files repository.FileRepository,
	shares repository.ShareLinkRepository,
	codec *encryption.Codec,
	store storage.ObjectStore,
	trail *audit.Recorder,
	tmp *TempDir,
) *FileService {
	return &FileService{
		files:  files,
		shares: shares,
		codec:  codec,
		store:  store,
		trail:  trail,
		tmp:    tmp,
	}
}

type UploadInput struct {
	OwnerID  uuid.UUID
	Filename string
	Content  io.Reader
	IP       string
}

// Upload stages the payload, encrypts it, ships the ciphertext to object
// storage and persists the metadata record last, so a File row never exists
// without its blob. If the metadata write fails, the just-uploaded blob is
// deleted again rather than left orphaned.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*models.File, error) {
	if in.Filename == "" || in.Content == nil {
		return nil, fmt.Errorf("%w: no file uploaded", common.ErrValidation)
	}

	stagePath := s.tmp.Path(in.Filename)
	if err := writeStream(stagePath, in.Content); err != nil {
		return nil, &common.OpError{Op: "upload", Stage: "stage", Err: err}
	}
	defer removeIfExists(stagePath)

	encPath := stagePath + ".enc"
	if err := s.codec.EncryptFile(stagePath, encPath); err != nil {
		return nil, &common.OpError{Op: "upload", Stage: "encrypt", Err: err}
	}
	defer removeIfExists(encPath)
	// the plaintext staging copy must not outlive the ciphertext
	removeIfExists(stagePath)

	storageKey := filepath.Base(encPath)
	if _, err := s.store.Upload(ctx, encPath, storageKey); err != nil {
		return nil, &common.OpError{Op: "upload", Stage: "store", Err: err}
	}
	removeIfExists(encPath)

	file := &models.File{
		Filename:   in.Filename,
		StorageKey: storageKey,
		OwnerID:    in.OwnerID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, storageKey); delErr != nil {
			log.Error().Err(delErr).Str("key", storageKey).
				Msg("orphaned blob left behind after failed metadata write")
		}
		return nil, &common.OpError{Op: "upload", Stage: "persist", Err: err}
	}

	s.trail.Record(ctx, audit.Event{
		UserID:   &in.OwnerID,
		Action:   audit.ActionFileUploaded,
		FileID:   &file.ID,
		IP:       in.IP,
		Metadata: map[string]any{"filename": in.Filename},
	})
	return file, nil
}

// Download materializes the caller's file into a decrypted staging path.
// The caller must invoke Cleanup on the result once the response has been
// written, on every exit path.
func (s *FileService) Download(ctx context.Context, callerID, fileID uuid.UUID, ip string) (*Download, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != callerID {
		return nil, common.ErrForbidden
	}

	dl, err := materialize(ctx, s.tmp, s.store, s.codec, file)
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, audit.Event{
		UserID:   &callerID,
		Action:   audit.ActionFileDownloaded,
		FileID:   &file.ID,
		IP:       ip,
		Metadata: map[string]any{"filename": file.Filename},
	})
	return dl, nil
}

// Delete removes the file's share links, then its blob, then the metadata
// record, in that order: a share link never outlives its file, and the
// record never disappears while the blob might still be referenced.
// Completed steps are not rolled back on a later failure.
func (s *FileService) Delete(ctx context.Context, callerID, fileID uuid.UUID, ip string) error {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != callerID {
		return common.ErrForbidden
	}

	if err := s.shares.DeleteByFileID(ctx, file.ID); err != nil {
		return &common.OpError{Op: "delete", Stage: "share links", Err: err}
	}
	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		return &common.OpError{Op: "delete", Stage: "blob", Err: err}
	}
	if err := s.files.Delete(ctx, file.ID); err != nil {
		return &common.OpError{Op: "delete", Stage: "record", Err: err}
	}

	s.trail.Record(ctx, audit.Event{
		UserID:   &callerID,
		Action:   audit.ActionFileDeleted,
		FileID:   &file.ID,
		IP:       ip,
		Metadata: map[string]any{"filename": file.Filename},
	})
	return nil
}

// List returns the caller's files, newest first.
func (s *FileService) List(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	return s.files.FindByOwner(ctx, ownerID)
}

// Download is a decrypted file staged for streaming.
type Download struct {
	Path     string
	Filename string
}

// Cleanup removes the decrypted staging file. It must run once the transfer
// has finished, whether the transfer succeeded or not.
func (d *Download) Cleanup() {
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", d.Path).Msg("decrypted temp file not removed")
	}
}

// materialize fetches a file's blob, decrypts it into a staging path and
// removes the encrypted intermediate. Shared by owner downloads and share
// consumption.
func materialize(ctx context.Context, tmp *TempDir, store storage.ObjectStore, codec *encryption.Codec, file *models.File) (*Download, error) {
	encPath := tmp.Path(file.StorageKey)
	if err := store.Download(ctx, file.StorageKey, encPath); err != nil {
		return nil, &common.OpError{Op: "download", Stage: "fetch", Err: err}
	}
	defer removeIfExists(encPath)

	decPath := tmp.Path("decrypted-" + file.Filename)
	if err := codec.DecryptFile(encPath, decPath); err != nil {
		removeIfExists(decPath)
		return nil, &common.OpError{Op: "download", Stage: "decrypt", Err: err}
	}
	return &Download{Path: decPath, Filename: file.Filename}, nil
}

func writeStream(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeIfExists(path)
	}
	return err
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("temp file not removed")
	}
}
