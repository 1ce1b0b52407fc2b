// pkg/core/building.go
package core

import "fmt"

// MaxBrokenness is the brokenness of a fully destroyed building.
const MaxBrokenness = 100

// BuildingCode is the construction category of a building.
type BuildingCode int

const (
	Wood BuildingCode = iota
	Steel
	Concrete
)

// BuildingCodes lists every known building code in kernel order.
var BuildingCodes = []BuildingCode{Wood, Steel, Concrete}

// String returns the lowercase name used in configuration keys.
func (c BuildingCode) String() string {
	switch c {
	case Wood:
		return "wood"
	case Steel:
		return "steel"
	case Concrete:
		return "concrete"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Valid reports whether c is one of BuildingCodes.
func (c BuildingCode) Valid() bool {
	return c >= Wood && c <= Concrete
}

// Fieryness is the fire state of a building.
type Fieryness int

const (
	Unburnt Fieryness = iota
	Heating
	Burning
	Inferno
	WaterDamage
	MinorDamage
	ModerateDamage
	SevereDamage
	BurntOut
)

func (f Fieryness) String() string {
	switch f {
	case Unburnt:
		return "unburnt"
	case Heating:
		return "heating"
	case Burning:
		return "burning"
	case Inferno:
		return "inferno"
	case WaterDamage:
		return "water_damage"
	case MinorDamage:
		return "minor_damage"
	case ModerateDamage:
		return "moderate_damage"
	case SevereDamage:
		return "severe_damage"
	case BurntOut:
		return "burnt_out"
	default:
		return fmt.Sprintf("fieryness(%d)", int(f))
	}
}

// Building is a structure that can collapse.
// Code, Brokenness and Fieryness are nil while undefined.
type Building struct {
	ID         EntityID
	Edges      []Edge
	Floors     int
	Code       *BuildingCode
	Brokenness *int
	Fieryness  *Fieryness
}

func (b *Building) EntityID() EntityID { return b.ID }

func (b *Building) Boundary() []Edge { return b.Edges }

// BrokennessOrZero returns the brokenness, or 0 if it was never written.
func (b *Building) BrokennessOrZero() int {
	if b.Brokenness == nil {
		return 0
	}
	return *b.Brokenness
}

// SetBrokenness writes the damage level.
func (b *Building) SetBrokenness(v int) {
	b.Brokenness = &v
}

func (b *Building) String() string {
	return fmt.Sprintf("Building(%d)", b.ID)
}
