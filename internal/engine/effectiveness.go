package engine

import (
	"slices"

	"github.com/pefman/gesture-duel/internal/models"
)

// Class is the coarse effectiveness label used in battle text.
type Class string

const (
	ClassImmune           Class = "immune"
	ClassSuperEffective   Class = "super_effective"
	ClassNotVeryEffective Class = "not_very_effective"
	ClassNeutral          Class = "neutral"
)

// Multiplier is the combined effect of an attack element against a defender.
type Multiplier struct {
	Factor float64 `json:"factor"`
	Immune bool    `json:"immune"`
}

func (m Multiplier) Class() Class {
	switch {
	case m.Immune:
		return ClassImmune
	case m.Factor > 1:
		return ClassSuperEffective
	case m.Factor < 1:
		return ClassNotVeryEffective
	default:
		return ClassNeutral
	}
}

// Effectiveness multiplies per-type factors (x2 strong, x0.5 weak, x1 otherwise)
// across every defender type. Any immune defender type forces the result to
// immune regardless of the order or of the other types. An attacking element
// missing from the chart is neutral.
func Effectiveness(chart models.TypeChart, attack models.Element, defender []models.Element) Multiplier {
	entry, ok := chart[attack]
	if !ok {
		return Multiplier{Factor: 1}
	}
	factor := 1.0
	for _, t := range defender {
		if slices.Contains(entry.Immune, t) {
			return Multiplier{Factor: 0, Immune: true}
		}
		if slices.Contains(entry.Strong, t) {
			factor *= 2
		}
		if slices.Contains(entry.Weak, t) {
			factor *= 0.5
		}
	}
	return Multiplier{Factor: factor}
}
