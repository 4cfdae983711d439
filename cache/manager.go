// Package cache holds parsed datasets keyed by URI. Concurrent loads of
// the same key share one fetch; entries are reference counted and dropped
// when the last user unloads them.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FetchFunc acquires and parses the dataset for key
type FetchFunc[D any] func(ctx context.Context, key string) (D, error)

// Info summarizes the cache contents
type Info struct {
	CacheSizeInBytes       int64
	NumberOfDataSetsCached int
}

type entry[D any] struct {
	dataset  D
	refs     int
	size     int64
	loadedAt time.Time
}

type pending[D any] struct {
	future *Future[D]
	refs   int
	id     string
}

// Manager is a reference-counted dataset cache with fan-in loading.
// All methods are safe for concurrent use.
type Manager[D any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[D]
	inflight map[string]*pending[D]
	size     int64

	logger    zerolog.Logger
	sizeOf    func(D) int64
	listeners []func(Event)
}

// NewManager creates an empty cache
func NewManager[D any](opts ...Option[D]) *Manager[D] {
	m := &Manager[D]{
		entries:  make(map[string]*entry[D]),
		inflight: make(map[string]*pending[D]),
		logger:   zerolog.Nop(),
		sizeOf:   func(D) int64 { return 0 },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsLoaded reports whether key has a cached entry
func (m *Manager[D]) IsLoaded(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// Load returns the dataset for key. A cached entry gains a reference and
// resolves immediately. A key already being fetched returns the pending
// future, and the reference is counted once the fetch succeeds. Otherwise
// fetch runs in its own goroutine; cancelling ctx does not abort it.
func (m *Manager[D]) Load(ctx context.Context, key string, fetch FetchFunc[D]) *Future[D] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.refs++
		m.logger.Debug().Str("key", key).Int("refs", e.refs).Msg("dataset cache hit")
		return resolvedFuture(e.dataset)
	}
	if p, ok := m.inflight[key]; ok {
		p.refs++
		m.logger.Debug().Str("key", key).Str("loadId", p.id).Int("waiters", p.refs).Msg("joined in-flight load")
		return p.future
	}

	p := &pending[D]{future: newFuture[D](), refs: 1, id: uuid.NewString()}
	m.inflight[key] = p
	m.logger.Debug().Str("key", key).Str("loadId", p.id).Msg("fetching dataset")

	go m.run(context.WithoutCancel(ctx), key, p, fetch)
	return p.future
}

func (m *Manager[D]) run(ctx context.Context, key string, p *pending[D], fetch FetchFunc[D]) {
	start := time.Now()
	v, err := fetch(ctx, key)
	if err != nil {
		err = &codec.FetchError{Key: key, Err: err}
	}

	m.mu.Lock()
	current := m.inflight[key] == p
	if current {
		delete(m.inflight, key)
	}
	var ev Event
	switch {
	case err != nil:
		ev = Event{Type: EventLoadFailed, Key: key, Err: err}
		m.logger.Debug().Err(err).Str("key", key).Str("loadId", p.id).Msg("dataset fetch failed")
	case !current:
		// Purged while in flight; waiters still get the dataset
		m.logger.Debug().Str("key", key).Str("loadId", p.id).Msg("discarding dataset fetched after purge")
	default:
		size := m.sizeOf(v)
		m.entries[key] = &entry[D]{dataset: v, refs: p.refs, size: size, loadedAt: time.Now()}
		m.size += size
		ev = Event{Type: EventLoaded, Key: key}
		m.logger.Debug().
			Str("key", key).
			Str("loadId", p.id).
			Int("refs", p.refs).
			Int64("bytes", size).
			Dur("elapsed", time.Since(start)).
			Msg("dataset loaded")
	}
	ev.Info = m.infoLocked()
	m.mu.Unlock()

	if ev.Type != 0 {
		m.notify(ev)
	}
	p.future.held = ev.Type == EventLoaded
	p.future.resolve(v, err)
}

// Abandon releases the reference a Load call took, for callers that stop
// waiting on f before it resolves. The reference is dropped once f
// resolves; failed and purged loads hold none and are left alone.
func (m *Manager[D]) Abandon(key string, f *Future[D]) {
	go func() {
		<-f.done
		if f.held {
			m.Unload(key)
		}
	}()
}

// Unload drops one reference to key. The entry is removed when no
// references remain. Unloading an absent key does nothing.
func (m *Manager[D]) Unload(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		m.logger.Debug().Str("key", key).Int("refs", e.refs).Msg("dataset released")
		m.mu.Unlock()
		return
	}
	delete(m.entries, key)
	m.size -= e.size
	m.logger.Debug().Str("key", key).Dur("cached", time.Since(e.loadedAt)).Msg("dataset unloaded")
	ev := Event{Type: EventUnloaded, Key: key, Info: m.infoLocked()}
	m.mu.Unlock()

	m.notify(ev)
}

// Purge drops every entry and forgets every in-flight load. Fetches
// still running resolve their futures but create no entries. References
// taken before a purge are void: callers must not Unload them, as that
// would release a reference on a newer entry for the same key. Abandon
// leaves them alone.
func (m *Manager[D]) Purge() {
	m.mu.Lock()
	n, inflight := len(m.entries), len(m.inflight)
	m.entries = make(map[string]*entry[D])
	m.inflight = make(map[string]*pending[D])
	m.size = 0
	m.logger.Debug().Int("entries", n).Int("inflight", inflight).Msg("dataset cache purged")
	ev := Event{Type: EventPurged, Info: m.infoLocked()}
	m.mu.Unlock()

	m.notify(ev)
}

// Get returns the cached dataset for key without taking a reference
func (m *Manager[D]) Get(key string) (D, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		var zero D
		return zero, false
	}
	return e.dataset, true
}

// Update replaces the dataset of a cached entry, keeping its reference
// count. It reports false when key is not cached.
func (m *Manager[D]) Update(key string, d D) bool {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return false
	}
	size := m.sizeOf(d)
	m.size += size - e.size
	e.dataset, e.size = d, size
	ev := Event{Type: EventUpdated, Key: key, Info: m.infoLocked()}
	m.mu.Unlock()

	m.notify(ev)
	return true
}

// Info returns the number of cached datasets and their total size
func (m *Manager[D]) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infoLocked()
}

func (m *Manager[D]) infoLocked() Info {
	return Info{CacheSizeInBytes: m.size, NumberOfDataSetsCached: len(m.entries)}
}

func (m *Manager[D]) notify(ev Event) {
	for _, fn := range m.listeners {
		fn(ev)
	}
}
