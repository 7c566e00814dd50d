package codec

import "sync"

// Registry manages the set of available codecs, keyed by name. Adapted
// from the teacher's codec.Registry, which additionally keyed by DICOM
// transfer syntax UID; this module has no UID concept, so Name is the
// only key.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

var defaultRegistry = NewRegistry()

// NewRegistry builds an empty registry. Library code should prefer the
// package-level Register/Get/List helpers, which share one process-wide
// registry; NewRegistry exists for tests that want an isolated one.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds codec to the default registry under codec.Name().
func Register(c Codec) error { return defaultRegistry.Register(c) }

// Get retrieves a codec by name from the default registry.
func Get(name string) (Codec, error) { return defaultRegistry.Get(name) }

// List returns every codec registered in the default registry.
func List() []Codec { return defaultRegistry.List() }

func (r *Registry) Register(c Codec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codecs[c.Name()]; exists {
		return ErrAlreadyRegistered
	}
	r.codecs[c.Name()] = c
	return nil
}

func (r *Registry) Get(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return c, nil
}

func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Codec, 0, len(r.codecs))
	for _, c := range r.codecs {
		out = append(out, c)
	}
	return out
}
