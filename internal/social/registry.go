package social

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexa los Controllers por ID de provider. Se arma al arrancar y
// después sólo se lee.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewRegistry crea un registry vacío.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Register agrega un controller. Un ID duplicado es un error de configuración.
func (r *Registry) Register(c *Controller) error {
	id := c.ProviderID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.controllers[id]; ok {
		return fmt.Errorf("social: provider %q already registered", id)
	}
	r.controllers[id] = c
	return nil
}

// Get devuelve el controller del provider o ErrUnknownProvider.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return c, nil
}

// Providers devuelve los IDs registrados, ordenados.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
