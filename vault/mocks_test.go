package vault

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/securevault/securevault-backend/models"
	"github.com/securevault/securevault-backend/storage"
)

// opLog records the order of side effects across collaborators.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

type mockFileRepo struct {
	mock.Mock
}

func (m *mockFileRepo) Create(ctx context.Context, file *models.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *mockFileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*models.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	args := m.Called(ctx, ownerID)
	if f := args.Get(0); f != nil {
		return f.([]models.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockShareRepo struct {
	mock.Mock
}

func (m *mockShareRepo) Create(ctx context.Context, link *models.ShareLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *mockShareRepo) FindByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	args := m.Called(ctx, token)
	if l := args.Get(0); l != nil {
		return l.(*models.ShareLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShareRepo) SetDownloadToken(ctx context.Context, token, downloadToken string, expiresAt time.Time) error {
	return m.Called(ctx, token, downloadToken, expiresAt).Error(0)
}

func (m *mockShareRepo) ClearDownloadToken(ctx context.Context, token, current string) (int64, error) {
	args := m.Called(ctx, token, current)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockShareRepo) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	return m.Called(ctx, fileID).Error(0)
}

func (m *mockShareRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) FindForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.AuditLog, error) {
	args := m.Called(ctx, ownerID, limit)
	if l := args.Get(0); l != nil {
		return l.([]models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeStore is an in-memory ObjectStore that also records its side effects
// on an opLog.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	log     *opLog

	failUpload   bool
	failDownload bool
	failDelete   bool
}

func newFakeStore(log *opLog) *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), log: log}
}

func (f *fakeStore) Upload(_ context.Context, localPath, key string) (string, error) {
	if f.failUpload {
		return "", &storage.Error{Op: "upload", Key: key, Err: os.ErrInvalid}
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", &storage.Error{Op: "upload", Key: key, Err: err}
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	f.log.add("store.upload")
	return key, nil
}

func (f *fakeStore) Download(_ context.Context, key, localPath string) error {
	if f.failDownload {
		return &storage.Error{Op: "download", Key: key, Err: os.ErrInvalid}
	}
	f.mu.Lock()
	data, ok := f.objects[key]
	f.mu.Unlock()
	if !ok {
		return &storage.Error{Op: "download", Key: key, Err: os.ErrNotExist}
	}
	f.log.add("store.download")
	return os.WriteFile(localPath, data, 0o600)
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	if f.failDelete {
		return &storage.Error{Op: "delete", Key: key, Err: os.ErrInvalid}
	}
	f.mu.Lock()
	delete(f.objects, key)
	f.mu.Unlock()
	f.log.add("store.delete")
	return nil
}
