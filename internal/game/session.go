package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/looplab/fsm"
	"github.com/pefman/gesture-duel/internal/engine"
	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/roster"
)

// Battle states.
const (
	StateAwaitingInput   = "awaiting_player_input"
	StateResolvingPlayer = "resolving_player_attack"
	StateResolvingEnemy  = "resolving_enemy_attack"
	StateEnded           = "battle_ended"
)

const (
	evSelect  = "select"
	evCounter = "counter"
	evReturn  = "return"
	evFinish  = "finish"
)

// OutcomeRecorder takes the terminal result of a battle. Implementations must
// not fail the caller.
type OutcomeRecorder interface {
	Record(ctx context.Context, outcome models.MatchOutcome)
}

// Combatant is the mutable per-battle copy of a creature template.
type Combatant struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Types       []models.Element `json:"type"`
	SpriteFront string           `json:"sprite_front,omitempty"`
	SpriteBack  string           `json:"sprite_back,omitempty"`
	Attacks     []models.Attack  `json:"attacks"`
	CurrentHP   int              `json:"current_hp"`
	MaxHP       int              `json:"max_hp"`
}

// NewCombatant copies the fields a battle needs and starts at full health.
func NewCombatant(c models.Creature) *Combatant {
	return &Combatant{
		ID:          c.ID,
		Name:        c.Name,
		Types:       append([]models.Element(nil), c.Types...),
		SpriteFront: c.SpriteFront,
		SpriteBack:  c.SpriteBack,
		Attacks:     append([]models.Attack(nil), c.Attacks...),
		CurrentHP:   c.HP,
		MaxHP:       c.HP,
	}
}

func (c *Combatant) clone() Combatant {
	out := *c
	out.Types = append([]models.Element(nil), c.Types...)
	out.Attacks = append([]models.Attack(nil), c.Attacks...)
	return out
}

// takeDamage subtracts dmg, floored at zero, and returns the new health.
func (c *Combatant) takeDamage(dmg int) int {
	if dmg < 0 {
		dmg = 0
	}
	c.CurrentHP -= dmg
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
	return c.CurrentHP
}

// SessionConfig carries the collaborators of a Session. Zero values are usable.
type SessionConfig struct {
	Calculator *engine.Calculator
	Recorder   OutcomeRecorder
	Clock      roster.Clock
	Pacing     Pacing
	// PickAttack returns an index in [0,n) for the enemy's move.
	PickAttack func(n int) int
}

// Snapshot is a read-only copy of session state for rendering.
type Snapshot struct {
	Player    Combatant        `json:"player"`
	Enemy     Combatant        `json:"enemy"`
	TurnOwner models.Side      `json:"turn_owner"`
	Ended     bool             `json:"ended"`
	State     string           `json:"state"`
	TimeOfDay models.TimeOfDay `json:"time_of_day"`
}

// Session is one battle between the player and an enemy.
type Session struct {
	mu        sync.Mutex
	machine   *fsm.FSM
	calc      *engine.Calculator
	recorder  OutcomeRecorder
	clock     roster.Clock
	pacing    Pacing
	pick      func(n int) int
	player    *Combatant
	enemy     *Combatant
	turnOwner models.Side
	ended     bool
	tod       models.TimeOfDay
	outcome   *models.MatchOutcome
}

// StartBattle looks both templates up and opens a session at full health.
// A missing template is a setup error.
func StartBattle(r *roster.Roster, playerID, opponentID string, tod models.TimeOfDay, cfg SessionConfig) (*Session, error) {
	p, err := r.Lookup(playerID)
	if err != nil {
		return nil, fmt.Errorf("start battle: player: %w", err)
	}
	e, err := r.Lookup(opponentID)
	if err != nil {
		return nil, fmt.Errorf("start battle: opponent: %w", err)
	}
	if cfg.Calculator == nil {
		cfg.Calculator = engine.NewCalculator(r.Chart())
	}
	return NewSession(p, e, tod, cfg), nil
}

func NewSession(player, enemy models.Creature, tod models.TimeOfDay, cfg SessionConfig) *Session {
	if cfg.Calculator == nil {
		cfg.Calculator = engine.NewCalculator(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = roster.RealClock{}
	}
	if cfg.PickAttack == nil {
		cfg.PickAttack = rand.IntN
	}
	return &Session{
		machine: fsm.NewFSM(StateAwaitingInput, fsm.Events{
			{Name: evSelect, Src: []string{StateAwaitingInput}, Dst: StateResolvingPlayer},
			{Name: evCounter, Src: []string{StateResolvingPlayer}, Dst: StateResolvingEnemy},
			{Name: evReturn, Src: []string{StateResolvingEnemy}, Dst: StateAwaitingInput},
			{Name: evFinish, Src: []string{StateResolvingPlayer, StateResolvingEnemy}, Dst: StateEnded},
		}, fsm.Callbacks{}),
		calc:      cfg.Calculator,
		recorder:  cfg.Recorder,
		clock:     cfg.Clock,
		pacing:    cfg.Pacing,
		pick:      cfg.PickAttack,
		player:    NewCombatant(player),
		enemy:     NewCombatant(enemy),
		turnOwner: models.SidePlayer,
		tod:       tod,
	}
}

// Opening returns the events that draw a fresh battle.
func (s *Session) Opening() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []Event{
		{Type: EventHealth, Side: models.SidePlayer, Current: s.player.CurrentHP, Max: s.player.MaxHP},
		{Type: EventHealth, Side: models.SideEnemy, Current: s.enemy.CurrentHP, Max: s.enemy.MaxHP},
		{Type: EventLog, Message: promptText(s.player)},
		{Type: EventPrompt},
	}
}

// SubmitPlayerAttack resolves the player's attack at index. Calls outside the
// player's turn, after the end, or with an index outside the attack list are
// ignored and return a Step with Accepted=false.
func (s *Session) SubmitPlayerAttack(ctx context.Context, index int) Step {
	s.mu.Lock()
	if s.ended || s.turnOwner != models.SidePlayer || !s.machine.Is(StateAwaitingInput) {
		s.mu.Unlock()
		return Step{}
	}
	if index < 0 || index >= len(s.player.Attacks) || index >= roster.MaxAttacks {
		s.mu.Unlock()
		return Step{}
	}
	s.transition(ctx, evSelect)
	atk := s.player.Attacks[index]
	step, outcome := s.resolve(ctx, s.enemy, models.SidePlayer, atk, s.player.Name+" used "+atk.Name+"!")
	s.mu.Unlock()

	s.record(ctx, outcome)
	return step
}

// ResolveEnemyTurn performs the enemy's counter-attack once the player's hit
// has been resolved. It is a no-op in any other state.
func (s *Session) ResolveEnemyTurn(ctx context.Context) Step {
	s.mu.Lock()
	if s.ended || s.turnOwner != models.SideEnemy || !s.machine.Is(StateResolvingEnemy) || len(s.enemy.Attacks) == 0 {
		s.mu.Unlock()
		return Step{}
	}
	atk := s.enemy.Attacks[s.pick(len(s.enemy.Attacks))]
	step, outcome := s.resolve(ctx, s.player, models.SideEnemy, atk, "Enemy "+s.enemy.Name+" used "+atk.Name+"!")
	s.mu.Unlock()

	s.record(ctx, outcome)
	return step
}

// resolve applies one hit and moves the machine on. Callers hold s.mu.
func (s *Session) resolve(ctx context.Context, defender *Combatant, side models.Side, atk models.Attack, text string) (Step, *models.MatchOutcome) {
	hit := s.calc.Resolve(atk.Power, atk.Type, defender.Types)
	remaining := defender.takeDamage(hit.Damage)
	target := side.Opposite()

	step := Step{Accepted: true, Hit: hit}
	step.Events = append(step.Events,
		Event{Type: EventAttackAnimation, Side: side, Attack: atk.Name},
		Event{Type: EventDamageAnimation, Delay: s.pacing.Windup, Side: target, Damage: hit.Damage, Effect: hit.Multiplier.Class()},
		Event{Type: EventHealth, Side: target, Current: remaining, Max: defender.MaxHP},
		Event{Type: EventLog, Message: text, Attack: atk.Name, Damage: hit.Damage},
	)

	if remaining == 0 {
		outcome := s.finish(ctx, side)
		step.Events = append(step.Events, Event{Type: EventEnded, Delay: s.pacing.FollowUp + s.pacing.EndCard, Outcome: outcome})
		return step, outcome
	}

	if side == models.SidePlayer {
		s.turnOwner = models.SideEnemy
		s.transition(ctx, evCounter)
		step.EnemyPending = true
		step.Next = s.pacing.FollowUp
		return step, nil
	}

	s.turnOwner = models.SidePlayer
	s.transition(ctx, evReturn)
	step.Events = append(step.Events,
		Event{Type: EventLog, Delay: s.pacing.FollowUp, Message: promptText(s.player)},
		Event{Type: EventPrompt},
	)
	return step, nil
}

// finish enters the terminal state. Callers hold s.mu.
func (s *Session) finish(ctx context.Context, winner models.Side) *models.MatchOutcome {
	s.transition(ctx, evFinish)
	s.ended = true
	o := models.MatchOutcome{
		Winner:    winner,
		Player:    s.player.Name,
		Opponent:  s.enemy.Name,
		TimeOfDay: s.tod,
		At:        s.clock.Now(),
	}
	s.outcome = &o
	log.Printf("battle: ended winner=%s player=%s opponent=%s tod=%s", winner, o.Player, o.Opponent, o.TimeOfDay)
	cp := o
	return &cp
}

func (s *Session) record(ctx context.Context, o *models.MatchOutcome) {
	if o == nil || s.recorder == nil {
		return
	}
	s.recorder.Record(context.WithoutCancel(ctx), *o)
}

// transition ignores ctx cancellation; callers have already validated the move.
func (s *Session) transition(ctx context.Context, ev string) {
	if err := s.machine.Event(context.WithoutCancel(ctx), ev); err != nil {
		log.Printf("battle: transition %s from %s failed: %v", ev, s.machine.Current(), err)
	}
}

func promptText(c *Combatant) string { return "What will " + c.Name + " do?" }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Player:    s.player.clone(),
		Enemy:     s.enemy.clone(),
		TurnOwner: s.turnOwner,
		Ended:     s.ended,
		State:     s.machine.Current(),
		TimeOfDay: s.tod,
	}
}

// Outcome returns the result once the battle has ended.
func (s *Session) Outcome() (models.MatchOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return models.MatchOutcome{}, false
	}
	return *s.outcome, true
}

// Ended reports whether the battle reached its terminal state.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
