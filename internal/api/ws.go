package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pefman/gesture-duel/internal/game"
	"github.com/pefman/gesture-duel/internal/input"
	"github.com/pefman/gesture-duel/internal/models"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// client is one browser connection and its match.
type client struct {
	id    string
	conn  *websocket.Conn
	wmu   sync.Mutex
	match *game.Match
	pacer *game.Pacer

	bmu    sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc // cancels the running battle's deliveries
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed from=%s: %v", r.RemoteAddr, err)
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		match: game.NewMatch(s.Roster, game.SessionConfig{
			Recorder: s.Recorder,
			Clock:    s.clock(),
			Pacing:   s.Pacing,
		}, s.RequirePeripheral),
	}
	c.pacer = &game.Pacer{Listener: c}
	c.ctx, c.cancel = context.WithCancel(r.Context())
	log.Printf("ws: connect id=%s from=%s", c.id, r.RemoteAddr)
	c.send(models.WsMsg{Type: "hello", Data: map[string]any{
		"id":                 c.id,
		"require_peripheral": s.RequirePeripheral,
	}})
	c.read()
}

func (c *client) send(m models.WsMsg) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.WriteJSON(m); err != nil {
		log.Printf("ws: write error to %s: %v", c.id, err)
	}
}

func (c *client) sendError(err error) {
	c.send(models.WsMsg{Type: "error", Data: map[string]string{"message": err.Error()}})
}

func (c *client) read() {
	defer func() {
		c.stopBattle()
		_ = c.conn.Close()
		log.Printf("ws: closed id=%s", c.id)
	}()
	for {
		var in clientIn
		if err := c.conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error id=%s: %v", c.id, err)
			}
			return
		}
		c.handle(in)
	}
}

func (c *client) handle(in clientIn) {
	switch in.Type {
	case "peripheral":
		var body struct {
			Connected bool `json:"connected"`
		}
		_ = json.Unmarshal(in.Data, &body)
		c.match.SetPeripheralConnected(body.Connected)
		log.Printf("ws: peripheral id=%s connected=%v", c.id, body.Connected)
	case "new_game":
		c.stopBattle()
		c.reveal(c.match.NewGame())
	case "restart":
		c.stopBattle()
		c.reveal(c.match.Restart())
	case "menu":
		c.stopBattle()
		c.match.ReturnToMenu()
		c.send(models.WsMsg{Type: "menu"})
	case "choose":
		var body struct {
			Player string `json:"player"`
		}
		_ = json.Unmarshal(in.Data, &body)
		c.choose(body.Player)
	case "attack":
		var body struct {
			Index int `json:"index"`
		}
		if err := json.Unmarshal(in.Data, &body); err != nil {
			log.Printf("ws: bad attack payload id=%s: %v", c.id, err)
			return
		}
		c.attack(body.Index)
	case "key":
		var body struct {
			Key string `json:"key"`
		}
		_ = json.Unmarshal(in.Data, &body)
		if idx, ok := input.KeyIndex(body.Key); ok {
			c.attack(idx)
		}
	case "gesture":
		var body struct {
			Value string `json:"value"`
		}
		_ = json.Unmarshal(in.Data, &body)
		g, idx, ok := input.DecodeGesture([]byte(body.Value))
		if !ok {
			log.Printf("ws: unknown gesture id=%s value=%q", c.id, g)
			return
		}
		c.attack(idx)
	case "snapshot":
		if s := c.match.Session(); s != nil {
			c.send(models.WsMsg{Type: "snapshot", Data: s.Snapshot()})
		}
	default:
		log.Printf("ws: unknown message id=%s type=%s", c.id, in.Type)
	}
}

func (c *client) reveal(rv game.Reveal, err error) {
	if err != nil {
		c.sendError(err)
		return
	}
	log.Printf("ws: opponent id=%s opponent=%s tod=%s", c.id, rv.Opponent.ID, rv.TimeOfDay)
	c.send(models.WsMsg{Type: "opponent", Data: map[string]any{
		"reveal":  rv,
		"players": c.match.AvailablePlayers(),
	}})
}

func (c *client) choose(playerID string) {
	c.stopBattle()
	s, err := c.match.Choose(playerID)
	if err != nil {
		if !errors.Is(err, game.ErrNoGame) {
			log.Printf("ws: choose failed id=%s player=%s: %v", c.id, playerID, err)
		}
		c.sendError(err)
		return
	}
	ctx := c.battleContext()
	c.send(models.WsMsg{Type: "battle_started", Data: s.Snapshot()})
	if err := c.pacer.Deliver(ctx, s.Opening()); err != nil {
		log.Printf("ws: opening interrupted id=%s: %v", c.id, err)
	}
}

func (c *client) attack(idx int) {
	s := c.match.Session()
	if s == nil {
		return
	}
	ctx := c.battleContext()
	go func() {
		accepted, err := c.pacer.Play(ctx, s, idx)
		if !accepted {
			log.Printf("ws: input ignored id=%s index=%d", c.id, idx)
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("ws: delivery stopped id=%s: %v", c.id, err)
		}
	}()
}

// battleContext returns the context of the running battle, creating one if needed.
func (c *client) battleContext() context.Context {
	c.bmu.Lock()
	defer c.bmu.Unlock()
	if c.ctx.Err() != nil {
		c.ctx, c.cancel = context.WithCancel(context.Background())
	}
	return c.ctx
}

// stopBattle cancels pending deliveries of the current battle.
func (c *client) stopBattle() {
	c.bmu.Lock()
	defer c.bmu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// ===== game.Listener =====

func (c *client) OnAttackAnimation(attacker models.Side) {
	c.send(models.WsMsg{Type: "attack_anim", Data: map[string]any{"side": attacker}})
}

func (c *client) OnDamageAnimation(target models.Side) {
	c.send(models.WsMsg{Type: "damage_anim", Data: map[string]any{"side": target}})
}

func (c *client) OnHealthChanged(side models.Side, current, max int) {
	c.send(models.WsMsg{Type: "health", Data: map[string]any{"side": side, "current": current, "max": max}})
}

func (c *client) OnActionLog(message string) {
	c.send(models.WsMsg{Type: "log", Data: message})
}

func (c *client) OnBattleEnded(o models.MatchOutcome) {
	c.send(models.WsMsg{Type: "ended", Data: o})
}

func (c *client) OnPromptForInput() {
	c.send(models.WsMsg{Type: "prompt"})
}
