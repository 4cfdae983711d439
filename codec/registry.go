package codec

import (
	"sort"
	"sync"
)

// Registry maps transfer syntax UIDs to external decoders
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]ExternalDecoder
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]ExternalDecoder)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry
func Default() *Registry {
	return defaultRegistry
}

// Register registers d for uid, replacing any previous decoder
func (r *Registry) Register(uid string, d ExternalDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[uid] = d
}

// Get retrieves the decoder registered for uid
func (r *Registry) Get(uid string) (ExternalDecoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[uid]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return d, nil
}

// List returns the registered transfer syntax UIDs in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := make([]string, 0, len(r.decoders))
	for uid := range r.decoders {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}
