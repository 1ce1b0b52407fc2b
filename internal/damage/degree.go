package damage

import (
	"fmt"
	"strings"
)

// CollapseDegree is the coarse damage bucket of a building.
type CollapseDegree int

const (
	None CollapseDegree = iota
	Slight
	Moderate
	Severe
	Destroyed
)

// Degrees lists every collapse degree from least to most damaged.
var Degrees = []CollapseDegree{None, Slight, Moderate, Severe, Destroyed}

var degreeMax = map[CollapseDegree]int{
	None:      0,
	Slight:    25,
	Moderate:  50,
	Severe:    75,
	Destroyed: 100,
}

// Max returns the highest brokenness in this bucket.
func (d CollapseDegree) Max() int {
	return degreeMax[d]
}

func (d CollapseDegree) String() string {
	switch d {
	case None:
		return "NONE"
	case Slight:
		return "SLIGHT"
	case Moderate:
		return "MODERATE"
	case Severe:
		return "SEVERE"
	case Destroyed:
		return "DESTROYED"
	default:
		return fmt.Sprintf("CollapseDegree(%d)", int(d))
	}
}

// Lower returns the lowercase name used in config keys and logs.
func (d CollapseDegree) Lower() string {
	return strings.ToLower(d.String())
}

// DegreeOf classifies a brokenness value. Values above 100 cannot occur
// because every damage write is clamped, so they panic.
func DegreeOf(damage int) CollapseDegree {
	for _, d := range Degrees {
		if damage <= d.Max() {
			return d
		}
	}
	panic(fmt.Sprintf("don't know what to do with a damage value of %d", damage))
}
