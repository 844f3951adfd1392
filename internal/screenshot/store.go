// Persist gateway screenshots and hand back a URL for the status contract.

package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store persists one base64 PNG and returns a URL (or local path) the
// status contract can expose as screenshotUrl.
type Store interface {
	Save(ctx context.Context, applicationID, b64PNG string) (string, error)
}

// LocalStore writes screenshots under a directory. Default when no S3
// bucket is configured.
type LocalStore struct {
	outputDir string
}

func NewLocalStore(dir string) *LocalStore {
	os.MkdirAll(dir, 0755)
	return &LocalStore{outputDir: dir}
}

func (s *LocalStore) Save(_ context.Context, applicationID, b64PNG string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64PNG)
	if err != nil {
		return "", fmt.Errorf("invalid screenshot payload: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", applicationID, timestamp)
	path := filepath.Join(s.outputDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
