// pkg/core/road.go
package core

import "fmt"

// Road is a traversable area that blockades can obstruct.
// Blockades is append-only: existing entries are never replaced.
type Road struct {
	ID        EntityID
	Edges     []Edge
	Blockades []EntityID
}

func (r *Road) EntityID() EntityID { return r.ID }

func (r *Road) Boundary() []Edge { return r.Edges }

// AppendBlockades adds ids after the blockades already on the road.
func (r *Road) AppendBlockades(ids ...EntityID) {
	merged := make([]EntityID, 0, len(r.Blockades)+len(ids))
	merged = append(merged, r.Blockades...)
	merged = append(merged, ids...)
	r.Blockades = merged
}

func (r *Road) String() string {
	return fmt.Sprintf("Road(%d)", r.ID)
}

// Blockade is rubble obstructing part of a road.
// Apexes is a flat x,y list; the polygon closes implicitly.
type Blockade struct {
	ID         EntityID
	Position   EntityID // owning road
	Apexes     []int
	X          int
	Y          int
	RepairCost int
}

func (b *Blockade) EntityID() EntityID { return b.ID }

func (b *Blockade) String() string {
	return fmt.Sprintf("Blockade(%d) on road %d: cost=%d centroid=(%d,%d) apexes=%v",
		b.ID, b.Position, b.RepairCost, b.X, b.Y, b.Apexes)
}
