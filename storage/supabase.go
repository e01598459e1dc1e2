package storage

import (
	"bytes"
	"context"
	"os"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps encrypted blobs in a Supabase storage bucket. The
// storage-go client is not context-aware, so deadlines on ctx are not
// propagated to the remote calls.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		client: storage_go.NewClient(projectURL, serviceKey, nil),
		bucket: bucket,
	}
}

func (s *SupabaseStore) Upload(_ context.Context, localPath, key string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", &Error{Op: "upload", Key: key, Err: err}
	}
	upsert := true
	ct := contentType
	_, err = s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &ct,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", &Error{Op: "upload", Key: key, Err: err}
	}
	return key, nil
}

func (s *SupabaseStore) Download(_ context.Context, key, localPath string) error {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return &Error{Op: "download", Key: key, Err: err}
	}
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return &Error{Op: "download", Key: key, Err: err}
	}
	return nil
}

func (s *SupabaseStore) Delete(_ context.Context, key string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	return nil
}
