package engine

import (
	"math"

	"github.com/pefman/gesture-duel/internal/models"
)

// Hit is the outcome of one damage resolution.
type Hit struct {
	Damage     int        `json:"damage"`
	Multiplier Multiplier `json:"multiplier"`
	// Variance is zero when the defender was immune and no roll was made.
	Variance float64 `json:"variance,omitempty"`
}

// Calculator resolves attack power into integer damage.
type Calculator struct {
	Chart models.TypeChart
	// Rand returns a value in [0,1). Nil draws from a fresh generator per call.
	Rand func() float64
}

func NewCalculator(chart models.TypeChart) *Calculator {
	return &Calculator{Chart: chart}
}

// Resolve computes floor(power * multiplier * variance), clamped to at least 1.
// Immune defenders take exactly 0 and skip the variance roll.
func (c *Calculator) Resolve(power int, attack models.Element, defender []models.Element) Hit {
	m := Effectiveness(c.Chart, attack, defender)
	if m.Immune {
		return Hit{Damage: 0, Multiplier: m}
	}
	draw := c.Rand
	if draw == nil {
		draw = freshFloat
	}
	v := varianceFrom(draw())
	dmg := int(math.Floor(float64(power) * m.Factor * v))
	if dmg < 1 {
		dmg = 1
	}
	return Hit{Damage: dmg, Multiplier: m, Variance: v}
}
