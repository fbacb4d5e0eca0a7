package skills

import (
	"fmt"
	"sync"
)

// EnablementLookup reports whether a skill is enabled. A nil lookup enables
// every registered skill.
type EnablementLookup func(skillID string) bool

// Registry holds tool-capable skills with enablement gating.
type Registry struct {
	mu      sync.RWMutex
	skills  map[string]Skill
	order   []string
	enabled EnablementLookup
}

func NewRegistry(enabled EnablementLookup) *Registry {
	return &Registry{
		skills:  map[string]Skill{},
		enabled: enabled,
	}
}

// Register adds a skill, replacing any existing entry for the same id.
func (r *Registry) Register(skill Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[skill.ID()]; !exists {
		r.order = append(r.order, skill.ID())
	}
	r.skills[skill.ID()] = skill
}

// Skill resolves a skill by id.
func (r *Registry) Skill(id string) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skill, ok := r.skills[id]
	return skill, ok
}

// All returns every registered skill in registration order.
func (r *Registry) All() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Skill, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.skills[id])
	}
	return all
}

// Enabled returns registered skills that pass the enablement lookup.
func (r *Registry) Enabled() []Skill {
	r.mu.RLock()
	enabled := r.enabled
	r.mu.RUnlock()

	skills := []Skill{}
	for _, skill := range r.All() {
		if enabled != nil && !enabled(skill.ID()) {
			continue
		}
		skills = append(skills, skill)
	}
	return skills
}

// EnabledToolSchemas returns tool schemas for enabled skills.
func (r *Registry) EnabledToolSchemas() []ToolSchema {
	schemas := []ToolSchema{}
	for _, skill := range r.Enabled() {
		schemas = append(schemas, skill.ToolSchema())
	}
	return schemas
}

// EnabledKey is the settings key controlling a skill's enablement.
func EnabledKey(skillID string) string {
	return fmt.Sprintf("skills.%s.enabled", skillID)
}
