package trust

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("trust_reports")

// DefaultCacheTTL bounds how stale a cached trust report may get before the
// metadata is fetched again.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores trust reports keyed by owner/repo slug so batch scans do not
// hammer the GitHub API for the same repository.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
}

type cachedReport struct {
	Report   Report    `json:"report"`
	CachedAt time.Time `json:"cached_at"`
}

func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open trust cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create trust cache bucket: %w", err)
	}

	return &Cache{db: db, ttl: DefaultCacheTTL}, nil
}

func (c *Cache) Get(slug string) (*Report, bool) {
	var entry cachedReport
	found := false

	_ = c.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(cacheBucket).Get([]byte(slug))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if !found || time.Since(entry.CachedAt) > c.ttl {
		return nil, false
	}
	return &entry.Report, true
}

func (c *Cache) Put(slug string, report *Report) error {
	entry := cachedReport{Report: *report, CachedAt: time.Now()}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(slug), value)
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}
