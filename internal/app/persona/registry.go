package persona

import (
	"fmt"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

// Info is the public view of a persona; it never carries the system prompt.
type Info struct {
	ID                 domain.PersonaID
	Name               string
	Description        string
	Traits             []string
	Tone               string
	CommunicationStyle string
}

// Registry is the read-only set of personas, fixed at construction.
type Registry struct {
	order []domain.PersonaID
	byID  map[domain.PersonaID]domain.Persona
}

// NewRegistry returns the registry with the four built-in personas.
func NewRegistry() *Registry {
	return newRegistry(defaultPersonas())
}

func newRegistry(personas []domain.Persona) *Registry {
	r := &Registry{
		order: make([]domain.PersonaID, 0, len(personas)),
		byID:  make(map[domain.PersonaID]domain.Persona, len(personas)),
	}
	for _, p := range personas {
		r.order = append(r.order, p.ID)
		r.byID[p.ID] = p
	}
	return r
}

// List returns public metadata for every persona in definition order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, PublicInfo(r.byID[id]))
	}
	return out
}

// Get returns the persona or an error wrapping domain.ErrNotFound.
func (r *Registry) Get(id domain.PersonaID) (domain.Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return domain.Persona{}, fmt.Errorf("persona %q: %w", id, domain.ErrNotFound)
	}
	p.Traits = append([]string(nil), p.Traits...)
	return p, nil
}

func PublicInfo(p domain.Persona) Info {
	return Info{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Traits:             append([]string(nil), p.Traits...),
		Tone:               p.Tone,
		CommunicationStyle: p.CommunicationStyle,
	}
}
