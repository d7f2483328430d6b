package battle

import (
	"github.com/google/uuid"

	"github.com/pokewilds/pokewilds-server-go/internal/collection"
)

// Message type tags. Every server-to-client payload carries one so
// clients can route on a single field.
const (
	MsgWildBattleStart  = "wild_battle_start"
	MsgPvPBattleStart   = "pvp_battle_start"
	MsgRequestAction    = "request_action"
	MsgRequestSwitch    = "request_switch"
	MsgTurnUpdate       = "turn_update"
	MsgBattleEnd        = "battle_end"
	MsgActivePokemon    = "active_pokemon"
	MsgMonsterDespawned = "monster_despawned"
	MsgBattleError      = "battle_error"
)

// WildBattleStartMessage announces a new wild encounter to its player.
type WildBattleStartMessage struct {
	Type     string         `json:"type"`
	BattleID uuid.UUID      `json:"battle_id"`
	Active   PrivateView    `json:"active_pokemon"`
	Team     []TeamOverview `json:"team"`
	Wild     PublicView     `json:"wild_pokemon"`
}

// PvPBattleStartMessage announces a new PvP battle to one participant.
type PvPBattleStartMessage struct {
	Type         string         `json:"type"`
	BattleID     uuid.UUID      `json:"battle_id"`
	OpponentID   string         `json:"opponent_id"`
	OpponentName string         `json:"opponent_name"`
	Active       PrivateView    `json:"active_pokemon"`
	Team         []TeamOverview `json:"team"`
	Opponent     PublicView     `json:"opponent_pokemon"`
}

// RequestActionMessage asks a player for their next turn action.
type RequestActionMessage struct {
	Type       string         `json:"type"`
	BattleID   uuid.UUID      `json:"battle_id"`
	TurnNumber int            `json:"turn_number"`
	Active     PrivateView    `json:"active_pokemon"`
	Team       []TeamOverview `json:"team"`
	Opponent   PublicView     `json:"opponent_pokemon"`
	CanSwitch  bool           `json:"can_switch"`
	MustSwitch bool           `json:"must_switch"`
	Field      FieldState     `json:"field"`
}

// RequestSwitchMessage asks a player to send out a replacement.
type RequestSwitchMessage struct {
	Type      string         `json:"type"`
	BattleID  uuid.UUID      `json:"battle_id"`
	Reason    SwitchReason   `json:"reason"`
	Available []TeamOverview `json:"available_switches"`
}

// TurnUpdateMessage carries the events of one resolved turn.
type TurnUpdateMessage struct {
	Type       string    `json:"type"`
	BattleID   uuid.UUID `json:"battle_id"`
	TurnNumber int       `json:"turn_number"`
	Events     []Event   `json:"events"`
}

// BattleEndMessage reports a battle's result to one participant.
type BattleEndMessage struct {
	Type     string    `json:"type"`
	BattleID uuid.UUID `json:"battle_id"`
	Outcome  string    `json:"outcome"`
	Reason   string    `json:"reason"`
}

// ActivePokemonMessage refreshes a player's party after a collection
// change, such as a capture.
type ActivePokemonMessage struct {
	Type    string                     `json:"type"`
	Pokemon []collection.PokemonRecord `json:"pokemon"`
}

// MonsterDespawnedMessage tells the lobby a wild monster is gone.
type MonsterDespawnedMessage struct {
	Type       string `json:"type"`
	InstanceID string `json:"instance_id"`
}

// BattleErrorMessage reports a rejected battle action.
type BattleErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newWildBattleStartMessage(s *WildState) WildBattleStartMessage {
	return WildBattleStartMessage{
		Type:     MsgWildBattleStart,
		BattleID: s.BattleID,
		Active:   NewPrivateView(s.Player.Active(), s.Moves),
		Team:     TeamOverviews(s.Player.Team),
		Wild:     NewPublicView(s.Wild),
	}
}

func newPvPBattleStartMessage(s *PvPState, side, opponent *BattlePlayer) PvPBattleStartMessage {
	return PvPBattleStartMessage{
		Type:         MsgPvPBattleStart,
		BattleID:     s.BattleID,
		OpponentID:   opponent.PlayerID,
		OpponentName: opponent.Name,
		Active:       NewPrivateView(side.Active(), s.Moves),
		Team:         TeamOverviews(side.Team),
		Opponent:     NewPublicView(opponent.Active()),
	}
}

func newWildRequestActionMessage(s *WildState) RequestActionMessage {
	return RequestActionMessage{
		Type:       MsgRequestAction,
		BattleID:   s.BattleID,
		TurnNumber: s.TurnNumber,
		Active:     NewPrivateView(s.Player.Active(), s.Moves),
		Team:       TeamOverviews(s.Player.Team),
		Opponent:   NewPublicView(s.Wild),
		CanSwitch:  s.Player.UsableCount() > 1,
		MustSwitch: s.Player.MustSwitch,
		Field:      s.Field,
	}
}

func newPvPRequestActionMessage(s *PvPState, side, opponent *BattlePlayer) RequestActionMessage {
	return RequestActionMessage{
		Type:       MsgRequestAction,
		BattleID:   s.BattleID,
		TurnNumber: s.TurnNumber,
		Active:     NewPrivateView(side.Active(), s.Moves),
		Team:       TeamOverviews(side.Team),
		Opponent:   NewPublicView(opponent.Active()),
		CanSwitch:  side.UsableCount() > 1,
		MustSwitch: side.MustSwitch,
		Field:      s.Field,
	}
}

func newRequestSwitchMessage(battleID uuid.UUID, reason SwitchReason, team []*BattlePokemon) RequestSwitchMessage {
	available := make([]TeamOverview, 0, len(team))
	for _, member := range team {
		if member.Usable() {
			available = append(available, NewTeamOverview(member))
		}
	}
	return RequestSwitchMessage{
		Type:      MsgRequestSwitch,
		BattleID:  battleID,
		Reason:    reason,
		Available: available,
	}
}

func newTurnUpdateMessage(battleID uuid.UUID, turnNumber int, events []Event) TurnUpdateMessage {
	return TurnUpdateMessage{
		Type:       MsgTurnUpdate,
		BattleID:   battleID,
		TurnNumber: turnNumber,
		Events:     events,
	}
}
