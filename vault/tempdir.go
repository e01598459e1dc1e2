package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// TempDir hands out unique staging paths under a private directory. The
// directory is created once and reused for the life of the process; staged
// files are removed per request, the directory itself is not.
type TempDir struct {
	dir string
}

// NewTempDir creates the staging directory under base, or under the system
// temp dir when base is empty.
func NewTempDir(base string) (*TempDir, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "securevault")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempDir{dir: dir}, nil
}

// Path returns a fresh staging path ending in the given name. Uniqueness
// comes from the timestamp plus a short random id, so concurrent requests
// on the same file never collide.
func (t *TempDir) Path(name string) string {
	prefix := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), shortuuid.New())
	return filepath.Join(t.dir, prefix+"-"+filepath.Base(name))
}
