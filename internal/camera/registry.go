package camera

import (
	"sort"
	"sync/atomic"
)

// Registry holds the published set of discovered cameras. The scan
// coordinator replaces the whole set when a scan completes; everyone
// else only reads. Readers always observe a complete set from a single
// scan, never a mix of two.
type Registry struct {
	snapshot atomic.Pointer[[]Camera]
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	r := &Registry{}

	cameras := []Camera{}
	r.snapshot.Store(&cameras)

	return r
}

// Snapshot returns the current camera set ordered by discovery time,
// oldest first
func (r *Registry) Snapshot() []Camera {
	return *r.snapshot.Load()
}

// Get returns the camera with the given id if one is published
func (r *Registry) Get(id string) (*Camera, bool) {
	for _, c := range r.Snapshot() {
		if c.ID == id {
			cam := c
			return &cam, true
		}
	}

	return nil, false
}

// Count returns the number of cameras currently published
func (r *Registry) Count() int {
	return len(r.Snapshot())
}

// Replace swaps in a completely new camera set in one step. Entries
// absent from the new set are gone after the swap; there is no
// per-camera add or remove.
func (r *Registry) Replace(cameras []Camera) {
	sorted := make([]Camera, len(cameras))
	copy(sorted, cameras)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DiscoveredAt.Equal(sorted[j].DiscoveredAt) {
			return sorted[i].Addr() < sorted[j].Addr()
		}

		return sorted[i].DiscoveredAt.Before(sorted[j].DiscoveredAt)
	})

	r.snapshot.Store(&sorted)
}
