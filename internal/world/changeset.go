package world

import "github.com/rescuesim/collapse/pkg/core"

// Property names reported in a ChangeSet.
const (
	PropertyBrokenness = "brokenness"
	PropertyBlockades  = "blockades"
)

// Change is one property write on an existing entity.
type Change struct {
	EntityID core.EntityID
	Property string
	Value    any
}

// ChangeSet collects everything a step changed so the caller can publish it.
// Changes keep their write order; new entities keep their creation order.
type ChangeSet struct {
	changes  []Change
	entities []core.Entity
}

// NewChangeSet creates an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{}
}

// AddChange records a property write on e.
func (c *ChangeSet) AddChange(e core.Entity, property string, value any) {
	c.changes = append(c.changes, Change{EntityID: e.EntityID(), Property: property, Value: value})
}

// AddEntities records newly created entities.
func (c *ChangeSet) AddEntities(es ...core.Entity) {
	c.entities = append(c.entities, es...)
}

// Changes returns the recorded property writes.
func (c *ChangeSet) Changes() []Change {
	return c.changes
}

// ChangesFor returns the writes of one property.
func (c *ChangeSet) ChangesFor(property string) []Change {
	var out []Change
	for _, ch := range c.changes {
		if ch.Property == property {
			out = append(out, ch)
		}
	}
	return out
}

// NewEntities returns the entities created during the step.
func (c *ChangeSet) NewEntities() []core.Entity {
	return c.entities
}

// IsEmpty reports whether nothing was recorded.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.changes) == 0 && len(c.entities) == 0
}
