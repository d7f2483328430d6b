package battle

import (
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// EventType tags entries in the battle log.
type EventType string

const (
	EventMoveUsed       EventType = "move_used"
	EventDamageDealt    EventType = "damage_dealt"
	EventHeal           EventType = "heal"
	EventStatusApplied  EventType = "status_applied"
	EventStatusRemoved  EventType = "status_removed"
	EventStatusDamage   EventType = "status_damage"
	EventStatChange     EventType = "stat_change"
	EventFainted        EventType = "pokemon_fainted"
	EventSwitchIn       EventType = "switch_in"
	EventMoveFailed     EventType = "move_failed"
	EventItemUsed       EventType = "item_used"
	EventCaptureAttempt EventType = "capture_attempt"
	EventWildFled       EventType = "wild_pokemon_fled"
	EventRanAway        EventType = "player_ran_away"
	EventGenericMessage EventType = "generic_message"
	EventTurnStart      EventType = "turn_start"
	EventExpGained      EventType = "exp_gained"
)

// DamageDetail carries the numbers behind a damage_dealt event.
type DamageDetail struct {
	Amount        int     `json:"damage"`
	NewHP         int     `json:"new_hp"`
	MaxHP         int     `json:"max_hp"`
	Effectiveness float64 `json:"effectiveness"`
	Critical      bool    `json:"is_critical"`
}

// HealDetail carries the numbers behind a heal event.
type HealDetail struct {
	Amount int `json:"amount"`
	NewHP  int `json:"new_hp"`
	MaxHP  int `json:"max_hp"`
}

// StatusDetail identifies the status behind a status event; damage
// fields are set for status_damage only.
type StatusDetail struct {
	Status dex.StatusCondition `json:"status"`
	Damage int                 `json:"damage,omitempty"`
	NewHP  int                 `json:"new_hp,omitempty"`
	MaxHP  int                 `json:"max_hp,omitempty"`
}

// StatChangeDetail carries the numbers behind a stat_change event.
type StatChangeDetail struct {
	Stat     stats.StatName `json:"stat"`
	Stages   int            `json:"stages"`
	NewStage int            `json:"new_stage"`
	Success  bool           `json:"success"`
}

// SwitchDetail carries the incoming Pokémon behind a switch_in event.
type SwitchDetail struct {
	View      PublicView `json:"pokemon_view"`
	TeamIndex int        `json:"team_index"`
}

// CaptureDetail carries the shake outcome behind a capture_attempt
// event.
type CaptureDetail struct {
	BallType   BallType `json:"ball_type"`
	ShakeCount int      `json:"shake_count"`
	Success    bool     `json:"success"`
}

// ItemDetail identifies the item behind an item_used event.
type ItemDetail struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
}

// Event is one entry in a battle's append-only log. Events are
// causally ordered within a turn; only the type-relevant detail
// fields are populated.
type Event struct {
	Type       EventType         `json:"event_type"`
	Source     *EntityRef        `json:"source,omitempty"`
	Target     *EntityRef        `json:"target,omitempty"`
	MoveID     int               `json:"move_id,omitempty"`
	MoveName   string            `json:"move_name,omitempty"`
	Message    string            `json:"message,omitempty"`
	TurnNumber int               `json:"turn_number,omitempty"`
	ExpGained  int64             `json:"exp_gained,omitempty"`
	RunSuccess *bool             `json:"run_success,omitempty"`
	Damage     *DamageDetail     `json:"damage,omitempty"`
	Heal       *HealDetail       `json:"heal,omitempty"`
	Status     *StatusDetail     `json:"status,omitempty"`
	StatChange *StatChangeDetail `json:"stat_change,omitempty"`
	Switch     *SwitchDetail     `json:"switch,omitempty"`
	Capture    *CaptureDetail    `json:"capture,omitempty"`
	Item       *ItemDetail       `json:"item,omitempty"`
}

func messageEvent(message string) Event {
	return Event{Type: EventGenericMessage, Message: message}
}

func turnStartEvent(turn int) Event {
	return Event{Type: EventTurnStart, TurnNumber: turn}
}

func moveUsedEvent(source, target EntityRef, moveID int, moveName string) Event {
	return Event{Type: EventMoveUsed, Source: &source, Target: &target, MoveID: moveID, MoveName: moveName}
}

func damageEvent(target EntityRef, detail DamageDetail) Event {
	return Event{Type: EventDamageDealt, Target: &target, Damage: &detail}
}

func healEvent(target EntityRef, detail HealDetail) Event {
	return Event{Type: EventHeal, Target: &target, Heal: &detail}
}

func statusAppliedEvent(target EntityRef, status dex.StatusCondition) Event {
	return Event{Type: EventStatusApplied, Target: &target, Status: &StatusDetail{Status: status}}
}

func statusDamageEvent(target EntityRef, detail StatusDetail) Event {
	return Event{Type: EventStatusDamage, Target: &target, Status: &detail}
}

func statChangeEvent(target EntityRef, detail StatChangeDetail) Event {
	return Event{Type: EventStatChange, Target: &target, StatChange: &detail}
}

func faintedEvent(target EntityRef) Event {
	return Event{Type: EventFainted, Target: &target}
}

func switchInEvent(view PublicView, teamIndex int) Event {
	return Event{Type: EventSwitchIn, Switch: &SwitchDetail{View: view, TeamIndex: teamIndex}}
}

func itemUsedEvent(target EntityRef, itemID, itemName string) Event {
	return Event{Type: EventItemUsed, Target: &target, Item: &ItemDetail{ItemID: itemID, ItemName: itemName}}
}

func captureAttemptEvent(detail CaptureDetail) Event {
	return Event{Type: EventCaptureAttempt, Capture: &detail}
}

func ranAwayEvent(success bool) Event {
	return Event{Type: EventRanAway, RunSuccess: &success}
}

func wildFledEvent() Event {
	return Event{Type: EventWildFled}
}

func expGainedEvent(source EntityRef, amount int64) Event {
	return Event{Type: EventExpGained, Source: &source, ExpGained: amount}
}
