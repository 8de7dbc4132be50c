// Package mastercache implements the MasterStore caching contract
// (spec.md §4.6): fingerprint-based invalidation over a two-tier cache
// (in-memory, on-disk) for the product/inspector/skill/vacation/cleaning
// master inputs.
package mastercache

import (
	"fmt"
	"os"
)

// Fingerprint identifies a master input's on-disk state at read time
// (spec.md §4.6: "record (path, modification_time, size)").
type Fingerprint struct {
	Path    string
	ModTime int64 // unix nanoseconds
	Size    int64
}

// Equal reports whether two fingerprints describe the same file state.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Path == other.Path && f.ModTime == other.ModTime && f.Size == other.Size
}

// Key renders a fingerprint as a stable cache key component.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%s|%d|%d", f.Path, f.ModTime, f.Size)
}

// ComputeFingerprint stats path and returns its fingerprint. A missing
// or unreadable file is returned as an error; the caller decides whether
// that is input-missing (spec.md §7) or an optional input.
func ComputeFingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat master input %s: %w", path, err)
	}
	return Fingerprint{
		Path:    path,
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
	}, nil
}
