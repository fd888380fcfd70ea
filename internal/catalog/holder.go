package catalog

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is one loaded catalog together with the store serving it.
type Snapshot struct {
	Catalog  *Catalog
	Store    Store
	LoadedAt time.Time

	closer    io.Closer
	refs      atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// NewSnapshot pairs a catalog with its store. closer, if non-nil, releases
// the store once the snapshot is retired and every reader has released it.
// The returned snapshot holds one reference owned by its creator.
func NewSnapshot(c *Catalog, store Store, closer io.Closer) *Snapshot {
	s := &Snapshot{Catalog: c, Store: store, LoadedAt: time.Now(), closer: closer}
	s.refs.Store(1)
	return s
}

// Close releases the store behind s regardless of outstanding references.
func (s *Snapshot) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	s.closeOnce.Do(func() { s.closeErr = s.closer.Close() })
	return s.closeErr
}

// Release drops one reference and closes the store when none remain.
func (s *Snapshot) Release() error {
	if s == nil {
		return nil
	}
	if s.refs.Add(-1) == 0 {
		return s.Close()
	}
	return nil
}

// tryAcquire takes a reference unless the snapshot has already been released
// for good.
func (s *Snapshot) tryAcquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Holder publishes the active snapshot to concurrent readers. A swap never
// mutates a snapshot; readers keep whatever they loaded.
type Holder struct {
	cur   atomic.Pointer[Snapshot]
	grace time.Duration
}

// NewHolder returns a Holder serving s. Retired snapshots are closed after
// grace so in-flight requests can finish against them.
func NewHolder(s *Snapshot, grace time.Duration) *Holder {
	h := &Holder{grace: grace}
	h.cur.Store(s)
	return h
}

// Load returns the active snapshot.
func (h *Holder) Load() *Snapshot {
	return h.cur.Load()
}

// Store returns the active store. It has the shape of query.Source.
func (h *Holder) Store() Store {
	return h.cur.Load().Store
}

// Acquire returns the active snapshot with a reference held. The store stays
// open until the caller calls Release, even if the snapshot is swapped out
// and its grace period expires. It returns nil once the holder is closed.
func (h *Holder) Acquire() *Snapshot {
	for {
		s := h.cur.Load()
		if s == nil || s.tryAcquire() {
			return s
		}
		if h.cur.Load() == s {
			return nil
		}
	}
}

// Swap installs s and drops the holder's reference to the previous snapshot
// after the grace period. Readers that acquired it keep it open.
func (h *Holder) Swap(s *Snapshot) {
	old := h.cur.Swap(s)
	if old == nil {
		return
	}
	if h.grace <= 0 {
		_ = old.Release()
		return
	}
	time.AfterFunc(h.grace, func() { _ = old.Release() })
}

// Close drops the holder's reference to the active snapshot.
func (h *Holder) Close() error {
	return h.cur.Load().Release()
}
