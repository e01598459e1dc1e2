package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/vault"
)

func TestShareCreateEndpoint(t *testing.T) {
	userID := uuid.New()
	fileID := uuid.New()

	t.Run("mints a link", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Create", mock.Anything, vault.CreateShareInput{
			OwnerID:       userID,
			FileID:        fileID,
			ExpiryMinutes: 30,
			Password:      "pw1",
			UnlockMinutes: 5,
		}).Return(&vault.CreatedShare{
			Token:             "tok",
			ShareURL:          "https://vault.example.com/api/files/shared/tok",
			ExpiresAt:         time.Now().Add(30 * time.Minute),
			PasswordProtected: true,
			UnlockMinutes:     5,
		}, nil)

		body := `{"expiryMinutes":30,"password":"pw1","unlockMinutes":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/files/share/"+fileID.String(), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		w := fx.do(t, req, &userID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/api/files/shared/tok")
		assert.Contains(t, w.Body.String(), `"passwordProtected":true`)
	})

	t.Run("missing expiry maps to 400", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Create", mock.Anything, mock.Anything).
			Return(nil, common.ErrValidation)

		req := httptest.NewRequest(http.MethodPost, "/api/files/share/"+fileID.String(), strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		w := fx.do(t, req, &userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		fx := newAPIFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/files/share/"+fileID.String(), strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")

		w := fx.do(t, req, &userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		fx.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("requires auth", func(t *testing.T) {
		fx := newAPIFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/files/share/"+fileID.String(), strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		w := fx.do(t, req, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestShareVerifyEndpoint(t *testing.T) {
	t.Run("open link needs no password", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Verify", mock.Anything, "tok", "", mock.Anything).
			Return(&vault.VerifyResult{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/files/shared/tok/verify", nil)
		w := fx.do(t, req, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No password required")
	})

	t.Run("correct password returns the one-time token", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Verify", mock.Anything, "tok", "pw1", mock.Anything).
			Return(&vault.VerifyResult{DownloadToken: "one-time", ValidForMinutes: 2}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/files/shared/tok/verify", strings.NewReader(`{"password":"pw1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := fx.do(t, req, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"downloadToken":"one-time"`)
		assert.Contains(t, w.Body.String(), `"validForMinutes":2`)
	})

	t.Run("wrong password", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Verify", mock.Anything, "tok", "wrong", mock.Anything).
			Return(nil, common.ErrUnauthorized)

		req := httptest.NewRequest(http.MethodPost, "/api/files/shared/tok/verify", strings.NewReader(`{"password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := fx.do(t, req, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired link", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Verify", mock.Anything, "tok", "", mock.Anything).
			Return(nil, common.ErrGone)

		w := fx.do(t, httptest.NewRequest(http.MethodPost, "/api/files/shared/tok/verify", nil), nil)
		assert.Equal(t, http.StatusGone, w.Code)
	})
}

func TestSharedDownloadEndpoint(t *testing.T) {
	t.Run("streams the shared file anonymously", func(t *testing.T) {
		fx := newAPIFixture(t)
		dl := stagedDownload(t, "plan.txt", []byte("attack at dawn"))
		fx.shares.On("Consume", mock.Anything, "tok", "one-time", mock.Anything).Return(dl, nil)

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok?access=one-time", nil), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attack at dawn", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "plan.txt")
	})

	t.Run("missing one-time token", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Consume", mock.Anything, "tok", "", mock.Anything).
			Return(nil, common.ErrUnauthorized)

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok", nil), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired link", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Consume", mock.Anything, "tok", "", mock.Anything).
			Return(nil, common.ErrGone)

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok", nil), nil)
		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Consume", mock.Anything, "tok", "", mock.Anything).
			Return(nil, common.ErrNotFound)

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok", nil), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShareQRCodeEndpoint(t *testing.T) {
	t.Run("renders a png", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Validate", mock.Anything, "tok").Return(nil)
		fx.shares.On("ShareURL", "tok").Return("https://vault.example.com/api/files/shared/tok")

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok/qr", nil), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("dead token", func(t *testing.T) {
		fx := newAPIFixture(t)
		fx.shares.On("Validate", mock.Anything, "tok").Return(common.ErrNotFound)

		w := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/files/shared/tok/qr", nil), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
