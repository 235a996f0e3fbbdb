package code_collector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/zeebo/xxh3"
)

const cacheFileExt = ".cache"

// CacheEntry represents a cached item with metadata
type CacheEntry struct {
	Data      interface{}
	Timestamp time.Time
	Key       string
}

// SnapshotStore keeps project snapshots as gob files inside a cache directory
type SnapshotStore struct {
	cacheDir string
	mutex    sync.RWMutex
}

// NewSnapshotStore creates a snapshot store.
// If cacheDir is empty, it defaults to ".cache" in the current working directory.
func NewSnapshotStore(cacheDir string) (*SnapshotStore, error) {
	gob.Register(&models.ProjectSnapshot{})

	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &SnapshotStore{cacheDir: cacheDir}, nil
}

// SnapshotKey derives the cache key for a root directory and output file pair
func SnapshotKey(rootDir string, outputFile string) string {
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	if abs, err := filepath.Abs(outputFile); err == nil {
		outputFile = abs
	}
	return fmt.Sprintf("%016x", xxh3.HashString(rootDir+"\x00"+outputFile))
}

func (store *SnapshotStore) getCachePath(key string) string {
	return filepath.Join(store.cacheDir, key+cacheFileExt)
}

// Load retrieves the snapshot stored under key
func (store *SnapshotStore) Load(key string) (*models.ProjectSnapshot, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	data, err := os.ReadFile(store.getCachePath(key))
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	snapshot, ok := entry.Data.(*models.ProjectSnapshot)
	if !ok {
		return nil, false
	}
	return snapshot, true
}

// Save stores snapshot under key, replacing any previous one
func (store *SnapshotStore) Save(key string, snapshot *models.ProjectSnapshot) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	entry := CacheEntry{
		Data:      snapshot,
		Timestamp: time.Now(),
		Key:       key,
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode snapshot entry: %w", err)
	}

	if err := os.WriteFile(store.getCachePath(key), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot cache file: %w", err)
	}

	return nil
}

// Clear removes every snapshot entry from the cache directory
func (store *SnapshotStore) Clear() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	entries, err := os.ReadDir(store.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheFileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(store.cacheDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cache file: %w", err)
		}
	}

	return nil
}

// Stats returns cache statistics
func (store *SnapshotStore) Stats() (map[string]interface{}, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	entries, err := os.ReadDir(store.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var count int
	var totalSize int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheFileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		totalSize += info.Size()
	}

	return map[string]interface{}{
		"cache_enabled": true,
		"cache_files":   count,
		"total_size":    totalSize,
		"cache_dir":     store.cacheDir,
	}, nil
}

// CompareSnapshots lists files added, modified or removed between previous and current
func CompareSnapshots(previous, current *models.ProjectSnapshot) *models.SnapshotDiff {
	diff := &models.SnapshotDiff{}

	for path, file := range current.Files {
		old, exists := previous.Files[path]
		switch {
		case !exists:
			diff.Added = append(diff.Added, path)
		case old.Hash != file.Hash:
			diff.Modified = append(diff.Modified, path)
		}
	}

	for path := range previous.Files {
		if _, exists := current.Files[path]; !exists {
			diff.Removed = append(diff.Removed, path)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Modified)
	sort.Strings(diff.Removed)

	return diff
}
