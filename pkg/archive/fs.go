package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem stores objects as files under a root directory. Metadata is
// written to a "<file>.meta" JSON sidecar.
type Filesystem struct {
	root string
}

// NewFilesystem returns a filesystem store rooted at dir, creating it if needed.
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		dir = "./archive"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Filesystem{root: dir}, nil
}

var _ Store = (*Filesystem)(nil)

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// sanitizeKey rejects keys that would escape the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "/../") {
		return "", fmt.Errorf("invalid key traversal %q", key)
	}
	return clean, nil
}

type metaFile struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Size        int64             `json:"size"`
}

func (s *Filesystem) Put(_ context.Context, obj Object) error {
	key, err := sanitizeKey(obj.Key)
	if err != nil {
		return err
	}
	dataPath := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dataPath), err)
	}

	f, err := os.OpenFile(dataPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("archive object %s already exists", key)
		}
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := f.Write(obj.Data); err != nil {
		f.Close()
		os.Remove(dataPath)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dataPath)
		return fmt.Errorf("close %s: %w", key, err)
	}

	meta, err := json.Marshal(metaFile{
		ContentType: obj.ContentType,
		Metadata:    obj.Metadata,
		Size:        int64(len(obj.Data)),
	})
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", key, err)
	}
	if err := os.WriteFile(dataPath+".meta", meta, 0o644); err != nil {
		return fmt.Errorf("write metadata for %s: %w", key, err)
	}
	return nil
}
