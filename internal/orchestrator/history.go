package orchestrator

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type appliedEntry struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
}

// AppliedCache remembers which (user, job posting) pairs already got a
// completed submission, so a crashed or restarted process never submits the
// same application twice. Entries age out after 90 days.
// Mutex is required because Go maps are NOT thread-safe.
type AppliedCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]int64
}

const ninetyDaysMs = int64(90 * 24 * 60 * 60 * 1000)

// NewAppliedCache creates or loads the applied-jobs cache
func NewAppliedCache(cacheDir string) *AppliedCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cache directory: %v", err)
	}
	cache := &AppliedCache{
		filePath: filepath.Join(cacheDir, "applied_jobs.json"),
		seen:     make(map[string]int64),
	}
	cache.load()
	return cache
}

// IsApplied checks whether this (user, job URL) pair already completed
func (c *AppliedCache) IsApplied(userID, jobURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.seen[flightKey(userID, jobURL)]
	return exists
}

// MarkApplied records a completed submission and persists the cache
func (c *AppliedCache) MarkApplied(userID, jobURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := flightKey(userID, jobURL)
	if _, exists := c.seen[key]; exists {
		return
	}
	c.seen[key] = time.Now().UnixMilli()
	c.save()
}

// load reads the cache from disk into the in-memory map
func (c *AppliedCache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read applied_jobs.json: %v", err)
		}
		return
	}

	var entries []appliedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ Failed to parse applied_jobs.json: %v", err)
		return
	}

	cutoff := time.Now().UnixMilli() - ninetyDaysMs
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			c.seen[e.Key] = e.Timestamp
			loaded++
		}
	}
	log.Printf("📋 Loaded %d previously applied jobs (%d expired and removed)", loaded, len(entries)-loaded)
}

// save writes the current cache to disk
func (c *AppliedCache) save() {
	entries := make([]appliedEntry, 0, len(c.seen))
	for key, ts := range c.seen {
		entries = append(entries, appliedEntry{Key: key, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal applied jobs: %v", err)
		return
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write applied_jobs.json: %v", err)
	}
}
