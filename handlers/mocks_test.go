package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/securevault/securevault-backend/auth"
	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/routes"
	"github.com/securevault/securevault-backend/vault"

	. "github.com/securevault/securevault-backend/handlers"
)

type mockFileService struct {
	mock.Mock
}

func (m *mockFileService) Upload(ctx context.Context, in vault.UploadInput) (*models.File, error) {
	args := m.Called(ctx, in)
	file, _ := args.Get(0).(*models.File)
	return file, args.Error(1)
}

func (m *mockFileService) Download(ctx context.Context, callerID, fileID uuid.UUID, ip string) (*vault.Download, error) {
	args := m.Called(ctx, callerID, fileID, ip)
	dl, _ := args.Get(0).(*vault.Download)
	return dl, args.Error(1)
}

func (m *mockFileService) Delete(ctx context.Context, callerID, fileID uuid.UUID, ip string) error {
	return m.Called(ctx, callerID, fileID, ip).Error(0)
}

func (m *mockFileService) List(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	args := m.Called(ctx, ownerID)
	files, _ := args.Get(0).([]models.File)
	return files, args.Error(1)
}

type mockShareService struct {
	mock.Mock
}

func (m *mockShareService) Create(ctx context.Context, in vault.CreateShareInput) (*vault.CreatedShare, error) {
	args := m.Called(ctx, in)
	share, _ := args.Get(0).(*vault.CreatedShare)
	return share, args.Error(1)
}

func (m *mockShareService) Verify(ctx context.Context, token, password, ip string) (*vault.VerifyResult, error) {
	args := m.Called(ctx, token, password, ip)
	result, _ := args.Get(0).(*vault.VerifyResult)
	return result, args.Error(1)
}

func (m *mockShareService) Consume(ctx context.Context, token, accessToken, ip string) (*vault.Download, error) {
	args := m.Called(ctx, token, accessToken, ip)
	dl, _ := args.Get(0).(*vault.Download)
	return dl, args.Error(1)
}

func (m *mockShareService) Validate(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockShareService) ShareURL(token string) string {
	return m.Called(token).String(0)
}

type mockAuditTrail struct {
	mock.Mock
}

func (m *mockAuditTrail) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AuditLog, error) {
	args := m.Called(ctx, ownerID)
	logs, _ := args.Get(0).([]models.AuditLog)
	return logs, args.Error(1)
}

type apiFixture struct {
	router *gin.Engine
	tokens *auth.Service
	files  *mockFileService
	shares *mockShareService
	trail  *mockAuditTrail
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := &apiFixture{
		tokens: auth.NewService("unit-test-secret"),
		files:  &mockFileService{},
		shares: &mockShareService{},
		trail:  &mockAuditTrail{},
	}
	fx.router = gin.New()
	routes.RegisterFileRoutes(fx.router, fx.tokens,
		NewFileHandler(fx.files), NewShareHandler(fx.shares), NewAuditHandler(fx.trail))
	return fx
}

// do runs a request through the full router, optionally authenticated as
// userID.
func (fx *apiFixture) do(t *testing.T, req *http.Request, userID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	if userID != nil {
		access, _, err := fx.tokens.GenerateTokens(userID.String())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+access)
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

// stagedDownload writes content to a temp file and wraps it the way the
// services hand decrypted files to the handlers.
func stagedDownload(t *testing.T, filename string, content []byte) *vault.Download {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return &vault.Download{Path: path, Filename: filename}
}
