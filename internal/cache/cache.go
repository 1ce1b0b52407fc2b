package cache

import (
	"sort"
	"sync"

	"github.com/rescuesim/collapse/pkg/core"
)

// BuildingSource lists the buildings currently in the world.
type BuildingSource interface {
	Buildings() []*core.Building
}

// BuildingCache tracks every building in the world so the collapse engine
// does not rescan all entities each step. It is kept in sync through the
// world's add/remove notifications.
type BuildingCache struct {
	m         sync.Mutex
	buildings map[core.EntityID]*core.Building
}

func NewBuildingCache() *BuildingCache {
	return &BuildingCache{
		buildings: make(map[core.EntityID]*core.Building),
	}
}

// Seed adds every building the source already holds.
func (c *BuildingCache) Seed(src BuildingSource) {
	c.m.Lock()
	defer c.m.Unlock()
	for _, b := range src.Buildings() {
		c.buildings[b.ID] = b
	}
}

// EntityAdded caches e when it is a building.
func (c *BuildingCache) EntityAdded(e core.Entity) {
	b, ok := e.(*core.Building)
	if !ok {
		return
	}
	c.m.Lock()
	defer c.m.Unlock()
	c.buildings[b.ID] = b
}

// EntityRemoved drops e when it is a building.
func (c *BuildingCache) EntityRemoved(e core.Entity) {
	if _, ok := e.(*core.Building); !ok {
		return
	}
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.buildings, e.EntityID())
}

func (c *BuildingCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.buildings)
}

// Buildings returns the tracked buildings in ascending ID order.
func (c *BuildingCache) Buildings() []*core.Building {
	c.m.Lock()
	out := make([]*core.Building, 0, len(c.buildings))
	for _, b := range c.buildings {
		out = append(out, b)
	}
	c.m.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
