package game

import (
	"context"
	"time"
)

// Pacer replays session events to a Listener, honouring each event's delay,
// and drives the enemy's counter-attack once the player's step is delivered.
type Pacer struct {
	Listener Listener
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p *Pacer) wait(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Deliver sends events in order. It stops early when ctx is cancelled.
func (p *Pacer) Deliver(ctx context.Context, events []Event) error {
	for _, ev := range events {
		if err := p.wait(ctx, ev.Delay); err != nil {
			return err
		}
		Dispatch(p.Listener, ev)
	}
	return nil
}

// Play submits the player's attack and, when accepted, delivers the player
// step, waits the follow-up hint and resolves the enemy's turn. It reports
// whether the input was accepted.
func (p *Pacer) Play(ctx context.Context, s *Session, index int) (bool, error) {
	step := s.SubmitPlayerAttack(ctx, index)
	if !step.Accepted {
		return false, nil
	}
	if err := p.Deliver(ctx, step.Events); err != nil {
		return true, err
	}
	if !step.EnemyPending {
		return true, nil
	}
	if err := p.wait(ctx, step.Next); err != nil {
		return true, err
	}
	return true, p.Deliver(ctx, s.ResolveEnemyTurn(ctx).Events)
}
