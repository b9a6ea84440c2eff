package models

import "time"

// ========================= Domain Models =========================
// Static roster shapes plus the records that leave a battle.

// Element is a creature or attack damage category (Fire, Water, ...).
type Element string

const (
	Fire     Element = "Fire"
	Water    Element = "Water"
	Electric Element = "Electric"
	Grass    Element = "Grass"
	Psychic  Element = "Psychic"
	Dark     Element = "Dark"
	Ghost    Element = "Ghost"
	Steel    Element = "Steel"
	Fighting Element = "Fighting"
	Normal   Element = "Normal"
	Flying   Element = "Flying"
	Poison   Element = "Poison"
	Dragon   Element = "Dragon"
	Bug      Element = "Bug"
	Ice      Element = "Ice"
	Ground   Element = "Ground"
	Rock     Element = "Rock"
	Fairy    Element = "Fairy"
)

// TypeEntry lists, for one attacking element, the defender elements it is
// strong against, weak against, and the ones immune to it.
type TypeEntry struct {
	Strong []Element `json:"strong" yaml:"strong"`
	Weak   []Element `json:"weak" yaml:"weak"`
	Immune []Element `json:"immune" yaml:"immune"`
}

// TypeChart is keyed by attacking element.
type TypeChart map[Element]TypeEntry

// TimeOfDay gates which player creatures are selectable.
type TimeOfDay string

const (
	Day   TimeOfDay = "day"
	Night TimeOfDay = "night"
)

// Side identifies one of the two combatants.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

type Attack struct {
	Name  string  `json:"name" yaml:"name"`
	Type  Element `json:"type" yaml:"type"`
	Power int     `json:"damage" yaml:"damage"`
	// Key is the input binding shown in the attack menu (player templates only).
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Creature is an immutable roster template.
type Creature struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Types       []Element `json:"type" yaml:"type"`
	HP          int       `json:"hp" yaml:"hp"`
	SpriteFront string    `json:"sprite_front,omitempty" yaml:"sprite_front,omitempty"`
	SpriteBack  string    `json:"sprite_back,omitempty" yaml:"sprite_back,omitempty"`
	// TimeOfDay is empty for opponent-only templates.
	TimeOfDay TimeOfDay `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
	Attacks   []Attack  `json:"attacks" yaml:"attacks"`
}

// MatchOutcome is produced exactly once when a battle ends.
type MatchOutcome struct {
	Winner    Side      `json:"winner"`
	Player    string    `json:"player"`
	Opponent  string    `json:"opponent"`
	TimeOfDay TimeOfDay `json:"time_of_day"`
	At        time.Time `json:"at"`
}

// PlayerWon reports whether the player side won.
func (o MatchOutcome) PlayerWon() bool { return o.Winner == SidePlayer }

// TimestampLayout matches ISO-8601 with milliseconds, e.g. 2026-01-02T09:04:05.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Result values stored in BattleRecord.Result.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// BattleRecord is the persisted shape of one completed battle.
type BattleRecord struct {
	Timestamp string    `json:"timestamp"`
	Player    string    `json:"player"`
	Opponent  string    `json:"opponent"`
	Result    string    `json:"result"`
	TimeOfDay TimeOfDay `json:"timeOfDay"`
}

// RecordFromOutcome converts an outcome into its stored form.
func RecordFromOutcome(o MatchOutcome) BattleRecord {
	res := ResultLoss
	if o.PlayerWon() {
		res = ResultWin
	}
	return BattleRecord{
		Timestamp: o.At.UTC().Format(TimestampLayout),
		Player:    o.Player,
		Opponent:  o.Opponent,
		Result:    res,
		TimeOfDay: o.TimeOfDay,
	}
}

// WebSocket message structure
type WsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
