package format

import "sync"

// Registry manages the available formats
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Format
	ordered []Format
}

var defaultRegistry = &Registry{
	byName: make(map[string]Format),
}

// Register adds a format to the default registry
func Register(f Format) {
	defaultRegistry.Register(f)
}

// Get retrieves a format by name from the default registry
func Get(name string) (Format, error) {
	return defaultRegistry.Get(name)
}

// Detect returns the first registered format that can read path
func Detect(path string) (Format, error) {
	return defaultRegistry.Detect(path)
}

// List returns all registered formats
func List() []Format {
	return defaultRegistry.List()
}

// Register adds a format, replacing any earlier registration with the same name
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[f.Name()]; !exists {
		r.ordered = append(r.ordered, f)
	} else {
		for i, known := range r.ordered {
			if known.Name() == f.Name() {
				r.ordered[i] = f
				break
			}
		}
	}
	r.byName[f.Name()] = f
}

// Get retrieves a format by name
func (r *Registry) Get(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byName[name]
	if !ok {
		return nil, ErrFormatNotFound
	}
	return f, nil
}

// Detect returns the first format, in registration order, that can read path
func (r *Registry) Detect(path string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.ordered {
		if f.CanRead(path) {
			return f, nil
		}
	}
	return nil, ErrFormatNotFound
}

// List returns all registered formats in registration order
func (r *Registry) List() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format, len(r.ordered))
	copy(out, r.ordered)
	return out
}
