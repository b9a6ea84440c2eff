package stats

import (
	"sync"
	"time"

	"github.com/pefman/gesture-duel/internal/models"
)

// Tally counts results.
type Tally struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

func (t *Tally) add(playerWon bool) {
	if playerWon {
		t.Wins++
	} else {
		t.Losses++
	}
}

// DailyStats summarizes one UTC day of battles.
type DailyStats struct {
	Date     string           `json:"date"`
	Total    Tally            `json:"total"`
	ByPlayer map[string]Tally `json:"by_player"`
	ByEnemy  map[string]Tally `json:"by_opponent"`
	ByTime   map[string]Tally `json:"by_time_of_day"`
}

func newDaily(date string) *DailyStats {
	return &DailyStats{Date: date, ByPlayer: map[string]Tally{}, ByEnemy: map[string]Tally{}, ByTime: map[string]Tally{}}
}

// Daily keeps per-day summaries keyed by date string YYYY-MM-DD (UTC).
type Daily struct {
	mu   sync.Mutex
	days map[string]*DailyStats
	now  func() time.Time
}

func NewDaily(now func() time.Time) *Daily {
	if now == nil {
		now = time.Now
	}
	return &Daily{days: map[string]*DailyStats{}, now: now}
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// Add counts an outcome under the day it happened.
func (d *Daily) Add(o models.MatchOutcome) {
	at := o.At
	if at.IsZero() {
		at = d.now()
	}
	key := dateKey(at)
	won := o.PlayerWon()

	d.mu.Lock()
	defer d.mu.Unlock()
	cur := d.days[key]
	if cur == nil {
		cur = newDaily(key)
		d.days[key] = cur
	}
	cur.Total.add(won)
	bump := func(m map[string]Tally, k string) {
		t := m[k]
		t.add(won)
		m[k] = t
	}
	bump(cur.ByPlayer, o.Player)
	bump(cur.ByEnemy, o.Opponent)
	bump(cur.ByTime, string(o.TimeOfDay))
}

// Today returns a copy of the current day's summary.
func (d *Daily) Today() DailyStats {
	key := dateKey(d.now())
	d.mu.Lock()
	defer d.mu.Unlock()
	cur := d.days[key]
	if cur == nil {
		return *newDaily(key)
	}
	out := *newDaily(key)
	out.Total = cur.Total
	for k, v := range cur.ByPlayer {
		out.ByPlayer[k] = v
	}
	for k, v := range cur.ByEnemy {
		out.ByEnemy[k] = v
	}
	for k, v := range cur.ByTime {
		out.ByTime[k] = v
	}
	return out
}

// Reset clears all summaries.
// Intended for tests and dev convenience.
func (d *Daily) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.days {
		delete(d.days, k)
	}
}
