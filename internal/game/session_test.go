package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pefman/gesture-duel/internal/engine"
	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []models.MatchOutcome
}

func (r *countingRecorder) Record(_ context.Context, o models.MatchOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

func creature(id string, hp int, types []models.Element, attacks ...models.Attack) models.Creature {
	return models.Creature{ID: id, Name: id, Types: types, HP: hp, Attacks: attacks}
}

// newTestSession builds a session with neutral types and a variance of 0.85.
func newTestSession(t *testing.T, player, enemy models.Creature, rec OutcomeRecorder) *Session {
	t.Helper()
	calc := engine.NewCalculator(models.TypeChart{})
	calc.Rand = func() float64 { return 0 }
	clock := roster.NewFakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	return NewSession(player, enemy, models.Day, SessionConfig{
		Calculator: calc,
		Recorder:   rec,
		Clock:      clock,
		PickAttack: func(int) int { return 0 },
	})
}

func TestSession_InitialState(t *testing.T) {
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		nil)

	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingInput, snap.State)
	assert.Equal(t, models.SidePlayer, snap.TurnOwner)
	assert.False(t, snap.Ended)
	assert.Equal(t, 100, snap.Player.CurrentHP)
	assert.Equal(t, 100, snap.Player.MaxHP)
	assert.Equal(t, 80, snap.Enemy.CurrentHP)

	open := s.Opening()
	require.Len(t, open, 4)
	assert.Equal(t, "What will hero do?", open[2].Message)
	assert.Equal(t, EventPrompt, open[3].Type)
}

func TestSession_TurnsAlternate(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		nil)

	step := s.SubmitPlayerAttack(ctx, 0)
	require.True(t, step.Accepted)
	assert.True(t, step.EnemyPending)
	assert.Equal(t, 8, step.Hit.Damage)

	snap := s.Snapshot()
	assert.Equal(t, models.SideEnemy, snap.TurnOwner)
	assert.Equal(t, StateResolvingEnemy, snap.State)
	assert.Equal(t, 72, snap.Enemy.CurrentHP)

	// Player input during the enemy's turn is dropped.
	again := s.SubmitPlayerAttack(ctx, 0)
	assert.False(t, again.Accepted)
	assert.Equal(t, snap, s.Snapshot())

	enemy := s.ResolveEnemyTurn(ctx)
	require.True(t, enemy.Accepted)
	snap = s.Snapshot()
	assert.Equal(t, models.SidePlayer, snap.TurnOwner)
	assert.Equal(t, StateAwaitingInput, snap.State)
	assert.Equal(t, 92, snap.Player.CurrentHP)

	last := enemy.Events[len(enemy.Events)-1]
	assert.Equal(t, EventPrompt, last.Type)
	assert.Equal(t, "What will hero do?", enemy.Events[len(enemy.Events)-2].Message)

	// Enemy step is a no-op while it is the player's turn.
	assert.False(t, s.ResolveEnemyTurn(ctx).Accepted)
}

func TestSession_ActionLogText(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t,
		creature("PIKACHU", 100, []models.Element{models.Electric}, models.Attack{Name: "THUNDER", Type: models.Electric, Power: 10}),
		creature("GASTLY", 80, []models.Element{models.Ghost}, models.Attack{Name: "LICK", Type: models.Ghost, Power: 10}),
		nil)

	var logs []string
	collect := func(events []Event) {
		for _, ev := range events {
			if ev.Type == EventLog {
				logs = append(logs, ev.Message)
			}
		}
	}
	collect(s.SubmitPlayerAttack(ctx, 0).Events)
	collect(s.ResolveEnemyTurn(ctx).Events)
	assert.Equal(t, []string{"PIKACHU used THUNDER!", "Enemy GASTLY used LICK!", "What will PIKACHU do?"}, logs)
}

func TestSession_PlayerWinsWithExactKill(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "SMASH", Type: models.Normal, Power: 95}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		rec)

	step := s.SubmitPlayerAttack(ctx, 0)
	require.True(t, step.Accepted)
	assert.Equal(t, 80, step.Hit.Damage)
	assert.False(t, step.EnemyPending)

	snap := s.Snapshot()
	assert.True(t, snap.Ended)
	assert.Equal(t, StateEnded, snap.State)
	assert.Equal(t, 0, snap.Enemy.CurrentHP)

	last := step.Events[len(step.Events)-1]
	require.Equal(t, EventEnded, last.Type)
	require.NotNil(t, last.Outcome)
	assert.Equal(t, models.SidePlayer, last.Outcome.Winner)

	require.Equal(t, 1, rec.count())
	assert.Equal(t, "hero", rec.outcomes[0].Player)
	assert.Equal(t, "foe", rec.outcomes[0].Opponent)
	assert.Equal(t, models.Day, rec.outcomes[0].TimeOfDay)

	// Everything after the end is a no-op and never records again.
	assert.False(t, s.SubmitPlayerAttack(ctx, 0).Accepted)
	assert.False(t, s.ResolveEnemyTurn(ctx).Accepted)
	assert.Equal(t, snap, s.Snapshot())
	assert.Equal(t, 1, rec.count())
}

func TestSession_EnemyWins(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "POKE", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "CRUSH", Type: models.Normal, Power: 118}),
		rec)

	require.True(t, s.SubmitPlayerAttack(ctx, 0).Accepted)
	step := s.ResolveEnemyTurn(ctx)
	require.True(t, step.Accepted)

	snap := s.Snapshot()
	assert.True(t, snap.Ended)
	assert.Equal(t, 0, snap.Player.CurrentHP)
	assert.Equal(t, 72, snap.Enemy.CurrentHP)

	o, ok := s.Outcome()
	require.True(t, ok)
	assert.Equal(t, models.SideEnemy, o.Winner)
	assert.False(t, o.PlayerWon())
	assert.Equal(t, 1, rec.count())
}

func TestSession_InvalidIndexIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal},
			models.Attack{Name: "A", Type: models.Normal, Power: 10},
			models.Attack{Name: "B", Type: models.Normal, Power: 10},
			models.Attack{Name: "C", Type: models.Normal, Power: 10},
			models.Attack{Name: "D", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		nil)

	before := s.Snapshot()
	for _, idx := range []int{5, 4, -1} {
		step := s.SubmitPlayerAttack(ctx, idx)
		assert.False(t, step.Accepted)
		assert.Empty(t, step.Events)
	}
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_ImmuneHitDealsNothing(t *testing.T) {
	ctx := context.Background()
	r, err := roster.Default()
	require.NoError(t, err)

	s, err := StartBattle(r, "pikachu", "gastly", models.Day, SessionConfig{PickAttack: func(int) int { return 0 }})
	require.NoError(t, err)

	// QUICK-A is Normal; GASTLY is Ghost/Poison.
	step := s.SubmitPlayerAttack(ctx, 3)
	require.True(t, step.Accepted)
	assert.Equal(t, 0, step.Hit.Damage)
	assert.Equal(t, engine.ClassImmune, step.Events[1].Effect)
	assert.Equal(t, 80, s.Snapshot().Enemy.CurrentHP)
	assert.Equal(t, models.SideEnemy, s.Snapshot().TurnOwner)
}

func TestSession_HealthBoundsOverFullBattle(t *testing.T) {
	ctx := context.Background()
	r, err := roster.Default()
	require.NoError(t, err)

	for round := 0; round < 20; round++ {
		rec := &countingRecorder{}
		s, err := StartBattle(r, "charizard", r.RandomOpponent(), models.Day, SessionConfig{Recorder: rec})
		require.NoError(t, err)

		for i := 0; i < 200 && !s.Ended(); i++ {
			before := s.Snapshot()
			step := s.SubmitPlayerAttack(ctx, i%4)
			require.True(t, step.Accepted)
			if step.EnemyPending {
				require.True(t, s.ResolveEnemyTurn(ctx).Accepted)
			}
			after := s.Snapshot()
			assert.LessOrEqual(t, after.Player.CurrentHP, before.Player.CurrentHP)
			assert.LessOrEqual(t, after.Enemy.CurrentHP, before.Enemy.CurrentHP)
			assert.GreaterOrEqual(t, after.Player.CurrentHP, 0)
			assert.GreaterOrEqual(t, after.Enemy.CurrentHP, 0)
		}
		snap := s.Snapshot()
		require.True(t, snap.Ended)
		assert.True(t, snap.Player.CurrentHP == 0 || snap.Enemy.CurrentHP == 0)
		assert.Equal(t, 1, rec.count())
	}
}

func TestStartBattle_UnknownCreature(t *testing.T) {
	r, err := roster.Default()
	require.NoError(t, err)

	_, err = StartBattle(r, "missingno", "gastly", models.Day, SessionConfig{})
	assert.ErrorIs(t, err, roster.ErrUnknownCreature)

	_, err = StartBattle(r, "pikachu", "missingno", models.Day, SessionConfig{})
	assert.ErrorIs(t, err, roster.ErrUnknownCreature)
}

func TestSession_EventPacing(t *testing.T) {
	ctx := context.Background()
	calc := engine.NewCalculator(models.TypeChart{})
	calc.Rand = func() float64 { return 0 }
	s := NewSession(
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		models.Night, SessionConfig{Calculator: calc, Pacing: DefaultPacing, PickAttack: func(int) int { return 0 }})

	step := s.SubmitPlayerAttack(ctx, 0)
	require.Len(t, step.Events, 4)
	assert.Equal(t, EventAttackAnimation, step.Events[0].Type)
	assert.Zero(t, step.Events[0].Delay)
	assert.Equal(t, 500*time.Millisecond, step.Events[1].Delay)
	assert.Equal(t, 1500*time.Millisecond, step.Next)

	enemy := s.ResolveEnemyTurn(ctx)
	assert.Equal(t, 1500*time.Millisecond, enemy.Events[4].Delay)
}

func TestSession_CancelledContextKeepsStateConsistent(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &countingRecorder{}
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "CRUSH", Type: models.Normal, Power: 118}),
		rec)

	step := s.SubmitPlayerAttack(cancelled, 0)
	require.True(t, step.Accepted)
	snap := s.Snapshot()
	assert.Equal(t, StateResolvingEnemy, snap.State)
	assert.Equal(t, models.SideEnemy, snap.TurnOwner)
	assert.Equal(t, 72, snap.Enemy.CurrentHP)

	// The enemy step still runs with a live context after a cancelled player step.
	require.True(t, s.ResolveEnemyTurn(context.Background()).Accepted)
	snap = s.Snapshot()
	assert.True(t, snap.Ended)
	assert.Equal(t, StateEnded, snap.State)
	assert.Equal(t, 1, rec.count())
}

func TestSession_CancelledEnemyTurnReturnsControl(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		nil)

	require.True(t, s.SubmitPlayerAttack(context.Background(), 0).Accepted)
	require.True(t, s.ResolveEnemyTurn(cancelled).Accepted)

	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingInput, snap.State)
	assert.Equal(t, models.SidePlayer, snap.TurnOwner)
	assert.Equal(t, 92, snap.Player.CurrentHP)

	require.True(t, s.SubmitPlayerAttack(context.Background(), 0).Accepted)
	assert.Equal(t, 64, s.Snapshot().Enemy.CurrentHP)
}

func TestSession_ConcurrentInputAcceptsOne(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t,
		creature("hero", 100, []models.Element{models.Normal}, models.Attack{Name: "HIT", Type: models.Normal, Power: 10}),
		creature("foe", 80, []models.Element{models.Normal}, models.Attack{Name: "BITE", Type: models.Normal, Power: 10}),
		nil)

	const n = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.SubmitPlayerAttack(ctx, 0).Accepted {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, accepted)
	snap := s.Snapshot()
	assert.Equal(t, 72, snap.Enemy.CurrentHP)
	assert.Equal(t, 100, snap.Player.CurrentHP)
	assert.Equal(t, models.SideEnemy, snap.TurnOwner)
}
