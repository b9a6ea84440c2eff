package roster

import (
	"sync"
	"time"

	"github.com/pefman/gesture-duel/internal/models"
)

// Day runs from DayStartHour (inclusive) to NightStartHour (exclusive), local time.
const (
	DayStartHour   = 7
	NightStartHour = 17
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// TimeOfDayAt classifies t by its hour in t's own location.
func TimeOfDayAt(t time.Time) models.TimeOfDay {
	if h := t.Hour(); h >= DayStartHour && h < NightStartHour {
		return models.Day
	}
	return models.Night
}

// SlotName is the label shown on the opponent reveal screen.
func SlotName(tod models.TimeOfDay) string {
	if tod == models.Day {
		return "Day Time"
	}
	return "Night Time"
}
