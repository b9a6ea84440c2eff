package engine

import (
	"math"
	"testing"

	"github.com/pefman/gesture-duel/internal/models"
	"github.com/stretchr/testify/assert"
)

func fixed(r float64) func() float64 { return func() float64 { return r } }

func TestResolve_ElectricVsWaterRange(t *testing.T) {
	c := NewCalculator(defaultChart(t))

	c.Rand = fixed(0)
	assert.Equal(t, 42, c.Resolve(25, models.Electric, []models.Element{models.Water}).Damage)

	c.Rand = fixed(math.Nextafter(1, 0))
	assert.Equal(t, 49, c.Resolve(25, models.Electric, []models.Element{models.Water}).Damage)

	c.Rand = nil
	for i := 0; i < 200; i++ {
		d := c.Resolve(25, models.Electric, []models.Element{models.Water}).Damage
		assert.GreaterOrEqual(t, d, 42)
		assert.LessOrEqual(t, d, 49)
	}
}

func TestResolve_NormalVsGhostIsZero(t *testing.T) {
	c := NewCalculator(defaultChart(t))
	called := false
	c.Rand = func() float64 { called = true; return 0.5 }

	hit := c.Resolve(15, models.Normal, []models.Element{models.Ghost})
	assert.Equal(t, 0, hit.Damage)
	assert.True(t, hit.Multiplier.Immune)
	assert.False(t, called, "variance must not be drawn for immune targets")
}

func TestResolve_MinimumOne(t *testing.T) {
	c := NewCalculator(defaultChart(t))
	c.Rand = fixed(0)

	// 1 * 0.25 * 0.85 floors to 0, clamped to 1.
	hit := c.Resolve(1, models.Fire, []models.Element{models.Water, models.Rock})
	assert.Equal(t, 1, hit.Damage)
}

func TestResolve_NeverBelowOneUnlessImmune(t *testing.T) {
	c := NewCalculator(defaultChart(t))
	elements := []models.Element{models.Fire, models.Water, models.Electric, models.Normal, models.Ghost, models.Dragon, models.Fairy, models.Psychic, models.Dark}
	for _, atk := range elements {
		for _, d1 := range elements {
			for _, d2 := range elements {
				def := []models.Element{d1, d2}
				hit := c.Resolve(3, atk, def)
				if Effectiveness(c.Chart, atk, def).Immune {
					assert.Equal(t, 0, hit.Damage)
				} else {
					assert.GreaterOrEqual(t, hit.Damage, 1)
				}
			}
		}
	}
}

func TestFreshFloat_BackToBackDrawsDiffer(t *testing.T) {
	seen := map[float64]bool{}
	for i := 0; i < 64; i++ {
		r := freshFloat()
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
		seen[r] = true
	}
	assert.Greater(t, len(seen), 60)
}
