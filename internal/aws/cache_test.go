package aws

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guimove/placefit/internal/pricing"
)

func TestFileCache_SetAndGet(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	original := []pricing.StorageRecord{
		{Vendor: "aws", Region: "us-east-1", Name: "s3", Tier: "Standard", Group: pricing.GroupStorage, PricePerUnit: 0.023},
	}
	if err := cache.Set("s3-prices-us-east-1", original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded []pricing.StorageRecord
	if !cache.Get("s3-prices-us-east-1", time.Hour, &loaded) {
		t.Fatal("Get returned false for valid cache entry")
	}
	if len(loaded) != 1 || loaded[0] != original[0] {
		t.Errorf("got %+v, want %+v", loaded, original)
	}
}

func TestFileCache_Misses(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)
	_ = cache.Set("expired", "value")
	if err := os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		key  string
		ttl  time.Duration
	}{
		{"expired", "expired", 0},
		{"missing", "nonexistent", time.Hour},
		{"corrupt", "corrupt", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result string
			if cache.Get(tt.key, tt.ttl, &result) {
				t.Error("expected cache miss")
			}
		})
	}
}

func TestFileCache_KeysStayInDirectory(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)

	if err := cache.Set("../escape/key", 1); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file in cache dir, got %d", len(entries))
	}

	var v int
	if !cache.Get("../escape/key", time.Hour, &v) || v != 1 {
		t.Error("expected hit for sanitized key")
	}
}

func TestFileCache_Clear(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	_ = cache.Set("key1", "val1")
	_ = cache.Set("key2", "val2")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	var result string
	if cache.Get("key1", time.Hour, &result) {
		t.Error("expected cache miss after clear")
	}

	if err := NewFileCache(filepath.Join(t.TempDir(), "absent")).Clear(); err != nil {
		t.Errorf("Clear on missing dir: %v", err)
	}
}
