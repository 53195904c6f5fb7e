package delegator

import (
	"morpheus/internal/agents"
)

// Registry maps agent names to handler instances. Built once at startup and
// read-only thereafter.
type Registry struct {
	byName map[string]agents.Agent
	names  []string // registration order
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]agents.Agent)}
}

// add registers an agent under its name. Names are pre-validated unique by
// the descriptor loader.
func (r *Registry) add(ag agents.Agent) {
	r.byName[ag.Name()] = ag
	r.names = append(r.names, ag.Name())
}

// Get retrieves an agent by name.
func (r *Registry) Get(name string) (agents.Agent, bool) {
	ag, ok := r.byName[name]
	return ag, ok
}

// Names returns registered agent names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.byName)
}
