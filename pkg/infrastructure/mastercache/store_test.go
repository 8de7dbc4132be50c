package mastercache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "master.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestStore_FetchCachesWithinTTL(t *testing.T) {
	path := writeTempFile(t, `{"v":1}`)
	s := NewStore(time.Minute, nil)

	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"a", "b"}, nil
	}
	encode := func(v any) ([]byte, error) { return EncodeGob(v.([]string)) }
	decode := func(b []byte) (any, error) { return DecodeGobAny[[]string](b) }

	if _, err := s.Fetch("kind", path, load, encode, decode); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := s.Fetch("kind", path, load, encode, decode); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected load called once, got %d", calls)
	}
}

func TestStore_FetchInvalidatesOnFingerprintChange(t *testing.T) {
	path := writeTempFile(t, `{"v":1}`)
	s := NewStore(time.Minute, nil)

	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"a"}, nil
	}
	encode := func(v any) ([]byte, error) { return EncodeGob(v.([]string)) }
	decode := func(b []byte) (any, error) { return DecodeGobAny[[]string](b) }

	if _, err := s.Fetch("kind", path, load, encode, decode); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	// Mutate the file; size/mtime change invalidates the cached entry
	// even though the TTL window has not elapsed.
	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"v":1,"extra":true}`), 0o600); err != nil {
		t.Fatalf("rewriting temp file: %v", err)
	}

	if _, err := s.Fetch("kind", path, load, encode, decode); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected load called twice after fingerprint change, got %d", calls)
	}
}

func TestStore_FetchUsesDiskTierAcrossStores(t *testing.T) {
	path := writeTempFile(t, `{"v":1}`)
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	disk, err := OpenDiskCache(dbPath)
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	defer disk.Close()

	encode := func(v any) ([]byte, error) { return EncodeGob(v.([]string)) }
	decode := func(b []byte) (any, error) { return DecodeGobAny[[]string](b) }

	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"a", "b", "c"}, nil
	}

	first := NewStore(time.Minute, disk)
	if _, err := first.Fetch("kind", path, load, encode, decode); err != nil {
		t.Fatalf("first store fetch: %v", err)
	}

	// A brand-new, empty in-memory tier still hits the disk tier
	// instead of calling load again.
	second := NewStore(time.Minute, disk)
	v, err := second.Fetch("kind", path, load, encode, decode)
	if err != nil {
		t.Fatalf("second store fetch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected load called once across two stores sharing a disk tier, got %d", calls)
	}
	got, ok := v.([]string)
	if !ok || len(got) != 3 {
		t.Fatalf("expected decoded 3-element slice, got %v", v)
	}
}

func TestStore_FetchBypassesCacheWhenPathMissing(t *testing.T) {
	s := NewStore(time.Minute, nil)
	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"a"}, nil
	}
	encode := func(v any) ([]byte, error) { return EncodeGob(v.([]string)) }
	decode := func(b []byte) (any, error) { return DecodeGobAny[[]string](b) }

	missing := filepath.Join(t.TempDir(), "does-not-exist.json")
	if _, err := s.Fetch("kind", missing, load, encode, decode); err != nil {
		t.Fatalf("fetch with missing path should not error: %v", err)
	}
	if _, err := s.Fetch("kind", missing, load, encode, decode); err != nil {
		t.Fatalf("fetch with missing path should not error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected load called every time when fingerprinting fails, got %d", calls)
	}
}

func TestFingerprint_Equal(t *testing.T) {
	path := writeTempFile(t, `{"v":1}`)
	a, err := ComputeFingerprint(path)
	if err != nil {
		t.Fatalf("ComputeFingerprint: %v", err)
	}
	b, err := ComputeFingerprint(path)
	if err != nil {
		t.Fatalf("ComputeFingerprint: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected repeated fingerprints of an unchanged file to be equal")
	}
	if a.Key() == "" {
		t.Fatalf("expected a non-empty cache key")
	}
}
