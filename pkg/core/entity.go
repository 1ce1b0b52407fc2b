// pkg/core/entity.go
package core

import "fmt"

// EntityID identifies an entity in the world model.
type EntityID int32

func (id EntityID) String() string {
	return fmt.Sprintf("%d", int32(id))
}

// Entity is anything the world model stores.
type Entity interface {
	EntityID() EntityID
}

// Edge is a directed boundary segment in millimetres.
type Edge struct {
	StartX int
	StartY int
	EndX   int
	EndY   int
}

// Area is an entity bounded by a closed chain of edges (buildings and roads).
type Area interface {
	Entity
	Boundary() []Edge
}
