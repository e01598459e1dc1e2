package vault

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/securevault/securevault-backend/audit"
	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/encryption"
	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/repository"
	"github.com/securevault/securevault-backend/storage"
)

const (
	shareTokenBytes      = 24
	downloadTokenBytes   = 16
	defaultUnlockMinutes = 2
)

// ShareService drives the share-link state machine: owners create
// time-boxed, optionally password-gated links; the public verifies the
// password to mint a one-time download token and consumes it exactly once.
// Expiry is checked lazily on every access.
type ShareService struct {
	shares  repository.ShareLinkRepository
	files   repository.FileRepository
	codec   *encryption.Codec
	store   storage.ObjectStore
	trail   *audit.Recorder
	tmp     *TempDir
	baseURL string
	now     func() time.Time
}

func NewShareService(
	shares repository.ShareLinkRepository,
	files repository.FileRepository,
	codec *encryption.Codec,
	store storage.ObjectStore,
	trail *audit.Recorder,
	tmp *TempDir,
	baseURL string,
) *ShareService {
	return &ShareService{
		shares:  shares,
		files:   files,
		codec:   codec,
		store:   store,
		trail:   trail,
		tmp:     tmp,
		baseURL: baseURL,
		now:     time.Now,
	}
}

type CreateShareInput struct {
	OwnerID       uuid.UUID
	FileID        uuid.UUID
	ExpiryMinutes int
	Password      string
	UnlockMinutes int
	IP            string
}

type CreatedShare struct {
	Token             string
	ShareURL          string
	ExpiresAt         time.Time
	PasswordProtected bool
	UnlockMinutes     int
}

// Create mints a new share link on a file the caller owns. The expiry is
// required and at least one minute; the password is optional and stored
// only as a bcrypt hash.
func (s *ShareService) Create(ctx context.Context, in CreateShareInput) (*CreatedShare, error) {
	if in.ExpiryMinutes < 1 {
		return nil, fmt.Errorf("%w: expiry time is required (in minutes)", common.ErrValidation)
	}

	file, err := s.files.FindByID(ctx, in.FileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != in.OwnerID {
		return nil, common.ErrForbidden
	}

	token, err := randomToken(shareTokenBytes)
	if err != nil {
		return nil, &common.OpError{Op: "share", Stage: "token", Err: err}
	}

	var passwordHash *string
	if in.Password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, &common.OpError{Op: "share", Stage: "hash password", Err: hashErr}
		}
		h := string(hash)
		passwordHash = &h
	}

	unlock := in.UnlockMinutes
	if unlock <= 0 {
		unlock = defaultUnlockMinutes
	}

	link := &models.ShareLink{
		Token:         token,
		FileID:        file.ID,
		ExpiresAt:     s.now().Add(time.Duration(in.ExpiryMinutes) * time.Minute),
		PasswordHash:  passwordHash,
		UnlockMinutes: unlock,
	}
	if err := s.shares.Create(ctx, link); err != nil {
		return nil, &common.OpError{Op: "share", Stage: "persist", Err: err}
	}

	s.trail.Record(ctx, audit.Event{
		UserID: &in.OwnerID,
		Action: audit.ActionShareLinkCreated,
		FileID: &file.ID,
		IP:     in.IP,
		Metadata: map[string]any{
			"expiresAt":         link.ExpiresAt,
			"passwordProtected": passwordHash != nil,
			"unlockMinutes":     unlock,
		},
	})

	return &CreatedShare{
		Token:             token,
		ShareURL:          s.ShareURL(token),
		ExpiresAt:         link.ExpiresAt,
		PasswordProtected: passwordHash != nil,
		UnlockMinutes:     unlock,
	}, nil
}

// ShareURL composes the public URL for a share token.
func (s *ShareService) ShareURL(token string) string {
	return fmt.Sprintf("%s/api/files/shared/%s", s.baseURL, token)
}

type VerifyResult struct {
	// DownloadToken is empty when the link carries no password gate and the
	// direct download path is open.
	DownloadToken   string
	ValidForMinutes int
}

// Verify checks the optional password on a share link. Links without a
// password succeed immediately with no token mint. Links with one require a
// matching password, and a match mints a one-time download token valid for
// the owner-configured unlock window.
func (s *ShareService) Verify(ctx context.Context, token, password, ip string) (*VerifyResult, error) {
	link, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if !link.PasswordProtected() {
		return &VerifyResult{}, nil
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid password", common.ErrUnauthorized)
	}

	downloadToken, err := randomToken(downloadTokenBytes)
	if err != nil {
		return nil, &common.OpError{Op: "share", Stage: "token", Err: err}
	}
	expiry := s.now().Add(time.Duration(link.UnlockMinutes) * time.Minute)
	if err := s.shares.SetDownloadToken(ctx, token, downloadToken, expiry); err != nil {
		return nil, &common.OpError{Op: "share", Stage: "mint token", Err: err}
	}

	s.trail.Record(ctx, audit.Event{
		Action: audit.ActionSharePasswordVerified,
		FileID: &link.FileID,
		IP:     ip,
		Metadata: map[string]any{
			"token":           token,
			"validForMinutes": link.UnlockMinutes,
		},
	})

	return &VerifyResult{DownloadToken: downloadToken, ValidForMinutes: link.UnlockMinutes}, nil
}

// Consume authorizes a public shared download. Password-gated links require
// the one-time token minted by Verify; the token is burned with an atomic
// compare-and-clear, so of two racing consumers exactly one proceeds. The
// audit entry is recorded before the token is invalidated, so the trail
// survives even if the clearing write fails.
func (s *ShareService) Consume(ctx context.Context, token, accessToken, ip string) (*Download, error) {
	link, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	file, err := s.files.FindByID(ctx, link.FileID)
	if err != nil {
		return nil, err
	}

	if link.PasswordProtected() {
		if accessToken == "" ||
			link.DownloadToken == nil || accessToken != *link.DownloadToken ||
			link.TokenExpiresAt == nil || !s.now().Before(*link.TokenExpiresAt) {
			return nil, fmt.Errorf("%w: valid one-time download token required", common.ErrUnauthorized)
		}

		s.trail.Record(ctx, audit.Event{
			Action: audit.ActionSharedFileDownloaded,
			FileID: &link.FileID,
			IP:     ip,
			Metadata: map[string]any{
				"token":    token,
				"filename": file.Filename,
			},
		})

		rows, err := s.shares.ClearDownloadToken(ctx, token, accessToken)
		if err != nil {
			return nil, &common.OpError{Op: "download", Stage: "consume token", Err: err}
		}
		if rows == 0 {
			// a concurrent consume won the compare-and-clear
			return nil, fmt.Errorf("%w: valid one-time download token required", common.ErrUnauthorized)
		}
	} else {
		s.trail.Record(ctx, audit.Event{
			Action: audit.ActionSharedFileDownloaded,
			FileID: &link.FileID,
			IP:     ip,
			Metadata: map[string]any{
				"token":    token,
				"filename": file.Filename,
			},
		})
	}

	return materialize(ctx, s.tmp, s.store, s.codec, file)
}

// Validate reports whether a share token exists and is unexpired, without
// touching its password or one-time-token state.
func (s *ShareService) Validate(ctx context.Context, token string) error {
	_, err := s.resolve(ctx, token)
	return err
}

func (s *ShareService) resolve(ctx context.Context, token string) (*models.ShareLink, error) {
	link, err := s.shares.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.now()) {
		return nil, common.ErrGone
	}
	return link, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
