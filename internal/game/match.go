package game

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/roster"
)

var (
	ErrPeripheralRequired = errors.New("gesture peripheral not connected")
	ErrNoGame             = errors.New("no game in progress")
	ErrNotAvailable       = errors.New("creature not available at this time of day")
)

// Reveal is what the opponent screen shows before the player picks.
type Reveal struct {
	Opponent  models.Creature  `json:"opponent"`
	TimeOfDay models.TimeOfDay `json:"time_of_day"`
	Slot      string           `json:"slot"`
	At        time.Time        `json:"at"`
}

// Match owns the pre-battle flow of one client: opponent draw, creature
// choice, restart and return to menu. The time of day is fixed when the
// opponent is drawn and kept for the battle that follows.
type Match struct {
	mu                sync.Mutex
	roster            *roster.Roster
	clock             roster.Clock
	cfg               SessionConfig
	requirePeripheral bool
	peripheral        bool

	tod      models.TimeOfDay
	opponent string
	player   string
	session  *Session
}

func NewMatch(r *roster.Roster, cfg SessionConfig, requirePeripheral bool) *Match {
	if cfg.Clock == nil {
		cfg.Clock = roster.RealClock{}
	}
	return &Match{roster: r, clock: cfg.Clock, cfg: cfg, requirePeripheral: requirePeripheral}
}

// SetPeripheralConnected records the gesture device's connection state.
func (m *Match) SetPeripheralConnected(ok bool) {
	m.mu.Lock()
	m.peripheral = ok
	m.mu.Unlock()
}

// NewGame fixes the time of day and draws an opponent.
func (m *Match) NewGame() (Reveal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requirePeripheral && !m.peripheral {
		return Reveal{}, ErrPeripheralRequired
	}
	return m.drawLocked()
}

// Restart draws a new opponent for a fresh time context and clears the choice.
func (m *Match) Restart() (Reveal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drawLocked()
}

func (m *Match) drawLocked() (Reveal, error) {
	now := m.clock.Now()
	m.tod = roster.TimeOfDayAt(now)
	m.opponent = m.roster.RandomOpponent()
	m.player = ""
	m.session = nil
	opp, err := m.roster.Lookup(m.opponent)
	if err != nil {
		return Reveal{}, err
	}
	return Reveal{Opponent: opp, TimeOfDay: m.tod, Slot: roster.SlotName(m.tod), At: now}, nil
}

// AvailablePlayers lists the creatures selectable for the current game.
func (m *Match) AvailablePlayers() []models.Creature {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Creature
	for _, id := range m.roster.PlayerPool(m.tod) {
		if c, err := m.roster.Lookup(id); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Choose starts the battle with the player's creature.
func (m *Match) Choose(playerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opponent == "" {
		return nil, ErrNoGame
	}
	if _, err := m.roster.Lookup(playerID); err != nil {
		return nil, err
	}
	if !slices.Contains(m.roster.PlayerPool(m.tod), playerID) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotAvailable, playerID, m.tod)
	}
	s, err := StartBattle(m.roster, playerID, m.opponent, m.tod, m.cfg)
	if err != nil {
		return nil, err
	}
	m.player = playerID
	m.session = s
	return s, nil
}

// ReturnToMenu drops the opponent, choice and session.
func (m *Match) ReturnToMenu() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opponent = ""
	m.player = ""
	m.session = nil
}

// Session returns the active battle, if any.
func (m *Match) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// TimeOfDay returns the context fixed by the last draw.
func (m *Match) TimeOfDay() models.TimeOfDay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tod
}

// OpponentID returns the drawn opponent, empty when at the menu.
func (m *Match) OpponentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opponent
}
