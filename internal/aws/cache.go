package aws

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps price list snapshots on disk as JSON, one file per key.
type FileCache struct {
	dir string
}

// NewFileCache creates a new file cache in the given directory.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Get decodes the entry for key into dest. It returns false when the entry
// is missing, older than ttl or unreadable.
func (fc *FileCache) Get(key string, ttl time.Duration, dest any) bool {
	path := fc.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > ttl {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores value under key. The entry is written to a temporary file and
// renamed, so readers never see a partial snapshot.
func (fc *FileCache) Set(key string, value any) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	tmp, err := os.CreateTemp(fc.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fc.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("installing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached snapshots.
func (fc *FileCache) Clear() error {
	entries, err := os.ReadDir(fc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(fc.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, keyReplacer.Replace(key)+".json")
}
