package models

import (
	"sort"
	"sync"
)

// Registry holds every known model, keyed by label.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register validates m, indexes its fields and adds it to the registry.
// Related models may be registered later; they are resolved on lookup.
func (r *Registry) Register(m *Model) error {
	if m == nil || m.AppLabel == "" || m.Name == "" {
		return ErrInvalidModel.Msg("model requires app_label and name")
	}
	index := make(map[string]*Field, len(m.Fields))
	for _, f := range m.Fields {
		if f == nil || f.Name == "" {
			return ErrInvalidModel.Msg("field without name on " + m.Label())
		}
		if _, dup := index[f.Name]; dup {
			return ErrInvalidModel.Msg("duplicate field " + f.Name + " on " + m.Label())
		}
		if f.IsRelation() && f.Type != GenericForeignKey && f.Related == "" {
			return ErrInvalidModel.Msg("relation field " + f.Name + " on " + m.Label() + " has no related model")
		}
		index[f.Name] = f
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.models[m.Label()]; dup {
		return ErrInvalidModel.Msg("model already registered: " + m.Label())
	}
	m.index = index
	m.registry = r
	r.models[m.Label()] = m
	return nil
}

// MustRegister registers every model and panics on the first error.
func (r *Registry) MustRegister(ms ...*Model) {
	for _, m := range ms {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
}

// Get returns the model registered under label.
func (r *Registry) Get(label string) (*Model, bool) {
	ct, ok := ParseContentType(label)
	if !ok {
		return nil, false
	}
	return r.ForContentType(ct)
}

// ForContentType returns the model identified by ct.
func (r *Registry) ForContentType(ct ContentType) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[ct.String()]
	return m, ok
}

// Models returns all registered models ordered by label.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}
