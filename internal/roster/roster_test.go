package roster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pefman/gesture-duel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Pools(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"pikachu", "charizard", "jolteon", "dragonite"}, r.PlayerPool(models.Day))
	assert.Equal(t, []string{"gengar", "mewtwo", "hypno", "alakazam"}, r.PlayerPool(models.Night))
	assert.Equal(t, []string{"gastly", "haunter", "gengar_enemy", "arcanine", "gyarados"}, r.Opponents())

	c, err := r.Lookup("charizard")
	require.NoError(t, err)
	assert.Equal(t, []models.Element{models.Fire, models.Flying}, c.Types)
	assert.Equal(t, 120, c.HP)
	assert.Equal(t, "FLAME-T", c.Attacks[0].Name)
	assert.Equal(t, 30, c.Attacks[0].Power)
	assert.Equal(t, "Z", c.Attacks[0].Key)
}

func TestRandomOpponent_UsesEnemyPool(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := r.RandomOpponent()
		assert.Contains(t, r.Opponents(), id)
		seen[id] = true
	}
	assert.Len(t, seen, 5)

	r.pick = func(n int) int { return n - 1 }
	assert.Equal(t, "gyarados", r.RandomOpponent())
}

func TestLookup_Unknown(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	_, err = r.Lookup("missingno")
	assert.ErrorIs(t, err, ErrUnknownCreature)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty": `creatures: []`,
		"three types": `
creatures:
  - {id: a, name: A, type: [Fire, Water, Ice], hp: 10, attacks: [{name: X, type: Fire, damage: 1}]}
opponents: [a]`,
		"no attacks": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, attacks: []}
opponents: [a]`,
		"five attacks": `
creatures:
  - id: a
    name: A
    type: [Fire]
    hp: 10
    attacks:
      - {name: A, type: Fire, damage: 1}
      - {name: B, type: Fire, damage: 1}
      - {name: C, type: Fire, damage: 1}
      - {name: D, type: Fire, damage: 1}
      - {name: E, type: Fire, damage: 1}
opponents: [a]`,
		"zero power": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, attacks: [{name: X, type: Fire, damage: 0}]}
opponents: [a]`,
		"duplicate id": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, attacks: [{name: X, type: Fire, damage: 1}]}
  - {id: a, name: B, type: [Fire], hp: 10, attacks: [{name: X, type: Fire, damage: 1}]}
opponents: [a]`,
		"bad time": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, time_of_day: dusk, attacks: [{name: X, type: Fire, damage: 1}]}
opponents: [a]`,
		"unknown opponent": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, attacks: [{name: X, type: Fire, damage: 1}]}
opponents: [b]`,
		"no opponents": `
creatures:
  - {id: a, name: A, type: [Fire], hp: 10, attacks: [{name: X, type: Fire, damage: 1}]}`,
		"not yaml": `{{{`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	doc := `
creatures:
  - {id: sun, name: SUN, type: [Fire], hp: 50, time_of_day: day, attacks: [{name: FLARE, type: Fire, damage: 10, key: Z}]}
  - {id: moon, name: MOON, type: [Dark], hp: 40, attacks: [{name: SHADE, type: Dark, damage: 8}]}
opponents: [moon]
type_chart:
  Fire: {strong: [Dark], weak: [], immune: []}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sun"}, r.PlayerPool(models.Day))
	assert.Empty(t, r.PlayerPool(models.Night))
	assert.Equal(t, "moon", r.RandomOpponent())
	assert.Equal(t, []models.Element{models.Dark}, r.Chart()[models.Fire].Strong)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTimeOfDayAt(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 6, 1, h, m, 0, 0, time.Local) }

	assert.Equal(t, models.Night, TimeOfDayAt(at(6, 59)))
	assert.Equal(t, models.Day, TimeOfDayAt(at(7, 0)))
	assert.Equal(t, models.Day, TimeOfDayAt(at(16, 59)))
	assert.Equal(t, models.Night, TimeOfDayAt(at(17, 0)))
	assert.Equal(t, models.Night, TimeOfDayAt(at(0, 0)))
	assert.Equal(t, "Night Time", SlotName(models.Night))
}
