package game

import (
	"time"

	"github.com/pefman/gesture-duel/internal/engine"
	"github.com/pefman/gesture-duel/internal/models"
)

type EventType string

const (
	EventAttackAnimation EventType = "attack_anim"
	EventDamageAnimation EventType = "damage_anim"
	EventHealth          EventType = "health"
	EventLog             EventType = "log"
	EventPrompt          EventType = "prompt"
	EventEnded           EventType = "ended"
)

// Event is an intent for the presentation layer. Delay is measured from the
// previous event in the same batch.
type Event struct {
	Type    EventType            `json:"type"`
	Delay   time.Duration        `json:"-"`
	Side    models.Side          `json:"side,omitempty"`
	Current int                  `json:"current,omitempty"`
	Max     int                  `json:"max,omitempty"`
	Message string               `json:"message,omitempty"`
	Attack  string               `json:"attack,omitempty"`
	Damage  int                  `json:"damage,omitempty"`
	Effect  engine.Class         `json:"effect,omitempty"`
	Outcome *models.MatchOutcome `json:"outcome,omitempty"`
}

// Pacing holds the animation delays the original UI waited on.
type Pacing struct {
	Windup   time.Duration // attack animation before the hit lands
	FollowUp time.Duration // after the hit, before the next step
	EndCard  time.Duration // extra wait before the end screen
}

var DefaultPacing = Pacing{
	Windup:   500 * time.Millisecond,
	FollowUp: 1500 * time.Millisecond,
	EndCard:  1000 * time.Millisecond,
}

// Scale multiplies every delay; 0 yields an instant pacing.
func (p Pacing) Scale(f float64) Pacing {
	if f <= 0 {
		return Pacing{}
	}
	mul := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Pacing{Windup: mul(p.Windup), FollowUp: mul(p.FollowUp), EndCard: mul(p.EndCard)}
}

// Step is what one resolution call produced.
type Step struct {
	Accepted bool
	Events   []Event
	Hit      engine.Hit
	// EnemyPending is set when ResolveEnemyTurn should be called after Next.
	EnemyPending bool
	Next         time.Duration
}

// Listener receives session signals in order.
type Listener interface {
	OnAttackAnimation(attacker models.Side)
	OnDamageAnimation(target models.Side)
	OnHealthChanged(side models.Side, current, max int)
	OnActionLog(message string)
	OnBattleEnded(outcome models.MatchOutcome)
	OnPromptForInput()
}

// Dispatch routes a single event to the matching listener method.
func Dispatch(l Listener, ev Event) {
	switch ev.Type {
	case EventAttackAnimation:
		l.OnAttackAnimation(ev.Side)
	case EventDamageAnimation:
		l.OnDamageAnimation(ev.Side)
	case EventHealth:
		l.OnHealthChanged(ev.Side, ev.Current, ev.Max)
	case EventLog:
		l.OnActionLog(ev.Message)
	case EventEnded:
		if ev.Outcome != nil {
			l.OnBattleEnded(*ev.Outcome)
		}
	case EventPrompt:
		l.OnPromptForInput()
	}
}
