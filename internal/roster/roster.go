package roster

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/pefman/gesture-duel/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// ErrUnknownCreature is returned when a template id is not in the roster.
var ErrUnknownCreature = errors.New("unknown creature")

// MaxAttacks is the size of the attack menu.
const MaxAttacks = 4

type rawRoster struct {
	Creatures []models.Creature `yaml:"creatures"`
	Opponents []string          `yaml:"opponents"`
	TypeChart models.TypeChart  `yaml:"type_chart"`
}

// Roster is the read-only creature and type data consumed by battles.
type Roster struct {
	order     []string
	byID      map[string]models.Creature
	opponents []string
	chart     models.TypeChart
	// pick returns an int in [0,n); swapped in tests.
	pick func(n int) int
}

// Default parses the embedded roster.
func Default() (*Roster, error) {
	return Parse(defaultRoster)
}

// Load reads a roster file. An empty path returns the embedded default.
func Load(path string) (*Roster, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("roster file %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates roster YAML.
func Parse(b []byte) (*Roster, error) {
	var raw rawRoster
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if len(raw.Creatures) == 0 {
		return nil, errors.New("creatures is empty")
	}
	r := &Roster{
		byID:  make(map[string]models.Creature, len(raw.Creatures)),
		chart: raw.TypeChart,
		pick:  rand.IntN,
	}
	if r.chart == nil {
		r.chart = models.TypeChart{}
	}
	for _, c := range raw.Creatures {
		if err := validateCreature(c); err != nil {
			return nil, err
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate creature id '%s'", c.ID)
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	if len(raw.Opponents) == 0 {
		return nil, errors.New("opponents is empty")
	}
	for _, id := range raw.Opponents {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("opponent '%s': %w", id, ErrUnknownCreature)
		}
	}
	r.opponents = append([]string(nil), raw.Opponents...)
	return r, nil
}

func validateCreature(c models.Creature) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("creature entry missing 'id'")
	}
	if c.Name == "" {
		return fmt.Errorf("creature '%s' missing 'name'", c.ID)
	}
	if n := len(c.Types); n < 1 || n > 2 {
		return fmt.Errorf("creature '%s' must have 1 or 2 types, got %d", c.ID, n)
	}
	if c.HP <= 0 {
		return fmt.Errorf("creature '%s' hp must be positive", c.ID)
	}
	switch c.TimeOfDay {
	case "", models.Day, models.Night:
	default:
		return fmt.Errorf("creature '%s' has invalid time_of_day '%s'", c.ID, c.TimeOfDay)
	}
	if n := len(c.Attacks); n < 1 || n > MaxAttacks {
		return fmt.Errorf("creature '%s' must have 1 to %d attacks, got %d", c.ID, MaxAttacks, n)
	}
	for i, a := range c.Attacks {
		if a.Name == "" || a.Type == "" {
			return fmt.Errorf("creature '%s' attack %d missing name or type", c.ID, i)
		}
		if a.Power <= 0 {
			return fmt.Errorf("creature '%s' attack '%s' damage must be positive", c.ID, a.Name)
		}
	}
	return nil
}

// Lookup returns the template for id.
func (r *Roster) Lookup(id string) (models.Creature, error) {
	c, ok := r.byID[id]
	if !ok {
		return models.Creature{}, fmt.Errorf("%w: %q", ErrUnknownCreature, id)
	}
	return c, nil
}

// Chart returns the type effectiveness table.
func (r *Roster) Chart() models.TypeChart { return r.chart }

// PlayerPool returns the ids of creatures available at tod, in roster order.
func (r *Roster) PlayerPool(tod models.TimeOfDay) []string {
	var out []string
	for _, id := range r.order {
		if r.byID[id].TimeOfDay == tod {
			out = append(out, id)
		}
	}
	return out
}

// Opponents returns the enemy-only pool.
func (r *Roster) Opponents() []string {
	return append([]string(nil), r.opponents...)
}

// RandomOpponent draws uniformly from the enemy pool regardless of time of day.
func (r *Roster) RandomOpponent() string {
	return r.opponents[r.pick(len(r.opponents))]
}
