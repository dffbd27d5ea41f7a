package resolve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	flock "github.com/theckman/go-flock"

	"github.com/software-mansion/scarb/scarbid"
)

var indexBucket = []byte("index")

// PersistentCache is a process-spanning, disk-backed cache of registry
// index query results, keyed by source-id+package-name (§4.D). Grounded
// on the teacher's internal/gps/source_cache_bolt.go: a single boltdb file
// under the cache root, one bucket per logical table, opened once per
// process with a short lock timeout so two concurrent invocations fail
// fast rather than deadlocking each other.
type PersistentCache struct {
	db *bolt.DB
}

// OpenPersistentCache opens (creating if absent) the index cache database
// at <cacheRoot>/index.db.
func OpenPersistentCache(cacheRoot string) (*PersistentCache, error) {
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(cacheRoot, "index.db"), 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &PersistentCache{db: db}, nil
}

func (c *PersistentCache) Close() error { return c.db.Close() }

type cachedEntry struct {
	ID           scarbid.PackageId
	Dependencies []Requirement
	Yanked       bool
	Checksum     scarbid.Checksum
}

// Get returns a previously stored index query result for key, if any.
func (c *PersistentCache) Get(key string) ([]Summary, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(indexBucket).Get([]byte(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	var entries []cachedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	summaries := make([]Summary, len(entries))
	for i, e := range entries {
		summaries[i] = Summary(e)
	}
	return summaries, true, nil
}

// Put stores summaries under key, overwriting any previous entry.
func (c *PersistentCache) Put(key string, summaries []Summary) error {
	entries := make([]cachedEntry, len(summaries))
	for i, s := range summaries {
		entries[i] = cachedEntry(s)
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(indexBucket).Put([]byte(key), raw)
	})
}

// DownloadLock serializes concurrent downloads of the same content-addressed
// artifact across processes, the way a second `scarb build` run must not
// race the first one's extraction of the same archive into the shared
// cache directory. Grounded on the teacher's use of a file lock in
// fs.go/txn_writer.go style transactional writes, adapted to
// github.com/theckman/go-flock since that is the cross-process advisory
// lock the rest of the corpus (golang-dep's vendor tree) already ships.
type DownloadLock struct {
	fl *flock.Flock
}

// NewDownloadLock returns a lock guarding path+".lock".
func NewDownloadLock(path string) *DownloadLock {
	return &DownloadLock{fl: flock.NewFlock(path + ".lock")}
}

// Lock blocks until the advisory lock is acquired.
func (d *DownloadLock) Lock() error {
	return d.fl.Lock()
}

// Unlock releases the advisory lock.
func (d *DownloadLock) Unlock() error {
	return d.fl.Unlock()
}
