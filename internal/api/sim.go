package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/pefman/gesture-duel/internal/engine"
	"github.com/pefman/gesture-duel/internal/game"
	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/roster"
)

// maxSimTurns bounds an autoplayed battle.
const maxSimTurns = 500

// POST /api/sim/hit -> damage preview for one attack against a roster creature
func (s *Server) handleSimHit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attack   models.Attack `json:"attack"`
		Defender string        `json:"defender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	def, err := s.Roster.Lookup(req.Defender)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if req.Attack.Power <= 0 || req.Attack.Type == "" {
		writeError(w, http.StatusBadRequest, "attack needs a type and positive damage")
		return
	}
	hit := engine.NewCalculator(s.Roster.Chart()).Resolve(req.Attack.Power, req.Attack.Type, def.Types)
	writeJSON(w, map[string]any{
		"damage":     hit.Damage,
		"multiplier": hit.Multiplier.Factor,
		"effect":     hit.Multiplier.Class(),
		"variance":   hit.Variance,
	})
}

type simResult struct {
	Winner  models.Side          `json:"winner"`
	Turns   int                  `json:"turns"`
	Events  []game.Event         `json:"events"`
	Final   game.Snapshot        `json:"final"`
	Outcome *models.MatchOutcome `json:"outcome,omitempty"`
}

// POST /api/sim/battle -> autoplays a battle with random moves on both sides; not recorded
func (s *Server) handleSimBattle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player   string `json:"player"`
		Opponent string `json:"opponent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Opponent == "" {
		req.Opponent = s.Roster.RandomOpponent()
	}
	tod := models.Day
	if p, err := s.Roster.Lookup(req.Player); err == nil && p.TimeOfDay != "" {
		tod = p.TimeOfDay
	}
	res, err := simulate(r.Context(), s.Roster, req.Player, req.Opponent, tod, s.clock())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, roster.ErrUnknownCreature) {
			code = http.StatusNotFound
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, res)
}

func simulate(ctx context.Context, r *roster.Roster, playerID, opponentID string, tod models.TimeOfDay, clock roster.Clock) (simResult, error) {
	s, err := game.StartBattle(r, playerID, opponentID, tod, game.SessionConfig{Clock: clock})
	if err != nil {
		return simResult{}, err
	}
	res := simResult{Events: s.Opening()}
	for !s.Ended() && res.Turns < maxSimTurns {
		if err := ctx.Err(); err != nil {
			return simResult{}, err
		}
		n := len(s.Snapshot().Player.Attacks)
		step := s.SubmitPlayerAttack(ctx, rand.IntN(n))
		res.Events = append(res.Events, step.Events...)
		if step.EnemyPending {
			res.Events = append(res.Events, s.ResolveEnemyTurn(ctx).Events...)
		}
		res.Turns++
	}
	res.Final = s.Snapshot()
	if o, ok := s.Outcome(); ok {
		res.Winner = o.Winner
		res.Outcome = &o
	}
	return res, nil
}
