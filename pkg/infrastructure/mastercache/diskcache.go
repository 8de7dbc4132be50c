package mastercache

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// DiskCache is the cross-run (tier 2) master-snapshot cache (spec.md
// §4.6). Keys already fold in the fingerprint (see Fingerprint.Key), so
// a new run never reuses a stale snapshot merely by sharing a bucket.
type DiskCache struct {
	db *bolt.DB
}

// OpenDiskCache opens (or creates) a bbolt database at path. A failure
// here degrades the caller to tier-1-only caching; it is never treated
// as an input-missing error (spec.md §7).
func OpenDiskCache(path string) (*DiskCache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open master disk cache %s: %w", path, err)
	}
	return &DiskCache{db: db}, nil
}

// Close releases the underlying bbolt database.
func (d *DiskCache) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Get returns the cached bytes for (bucket, key), or found=false when
// the bucket or key is absent.
func (d *DiskCache) Get(bucket, key string) ([]byte, bool, error) {
	var value []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

// Put stores bytes under (bucket, key), creating the bucket on first use.
func (d *DiskCache) Put(bucket, key string, value []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}
