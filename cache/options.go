package cache

import "github.com/rs/zerolog"

// EventType identifies a cache transition
type EventType int

const (
	// EventLoaded fires when a fetch succeeds and its entry is inserted
	EventLoaded EventType = iota + 1
	// EventLoadFailed fires when a fetch fails
	EventLoadFailed
	// EventUnloaded fires when an entry's reference count reaches zero
	EventUnloaded
	// EventUpdated fires when an entry's dataset is replaced
	EventUpdated
	// EventPurged fires once per Purge call
	EventPurged
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load-failed"
	case EventUnloaded:
		return "unloaded"
	case EventUpdated:
		return "updated"
	case EventPurged:
		return "purged"
	default:
		return "unknown"
	}
}

// Event describes a cache transition. Info is the cache state right after it.
type Event struct {
	Type EventType
	Key  string
	Err  error
	Info Info
}

// Option configures a Manager
type Option[D any] func(*Manager[D])

// WithLogger sets the logger for load lifecycle events
func WithLogger[D any](l zerolog.Logger) Option[D] {
	return func(m *Manager[D]) {
		m.logger = l
	}
}

// WithSizeFunc sets the function reporting a dataset's memory footprint,
// used for Info().CacheSizeInBytes
func WithSizeFunc[D any](fn func(D) int64) Option[D] {
	return func(m *Manager[D]) {
		m.sizeOf = fn
	}
}

// WithListener registers a function called after every cache transition.
// It runs outside the manager's lock and may call back into the manager.
func WithListener[D any](fn func(Event)) Option[D] {
	return func(m *Manager[D]) {
		m.listeners = append(m.listeners, fn)
	}
}
