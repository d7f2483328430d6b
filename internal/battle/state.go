package battle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
)

// EntityKind tags which participant slot an EntityRef addresses.
type EntityKind string

const (
	EntityPlayer  EntityKind = "player"
	EntityWild    EntityKind = "wild"
	EntityPlayer1 EntityKind = "player1"
	EntityPlayer2 EntityKind = "player2"
)

// EntityRef addresses a participant slot in a battle: the wild
// Pokémon, or a team index on one of the player sides. It carries no
// ownership; resolution against the wrong battle kind yields an
// internal-consistency error, never a panic.
type EntityRef struct {
	Kind      EntityKind `json:"entity_type"`
	TeamIndex int        `json:"team_index"`
}

// PlayerRef addresses a team slot on the wild battle's player side.
func PlayerRef(teamIndex int) EntityRef {
	return EntityRef{Kind: EntityPlayer, TeamIndex: teamIndex}
}

// WildRef addresses the wild Pokémon slot.
func WildRef() EntityRef {
	return EntityRef{Kind: EntityWild}
}

// Player1Ref addresses a team slot on PvP player 1's side.
func Player1Ref(teamIndex int) EntityRef {
	return EntityRef{Kind: EntityPlayer1, TeamIndex: teamIndex}
}

// Player2Ref addresses a team slot on PvP player 2's side.
func Player2Ref(teamIndex int) EntityRef {
	return EntityRef{Kind: EntityPlayer2, TeamIndex: teamIndex}
}

// ActionType discriminates player action submissions.
type ActionType string

const (
	ActionUseMove ActionType = "use_move"
	ActionSwitch  ActionType = "switch_pokemon"
	ActionUseItem ActionType = "use_item"
	ActionRun     ActionType = "run"
)

// Action is a player's submitted choice for one turn.
type Action struct {
	Type          ActionType `json:"action_type"`
	MoveIndex     int        `json:"move_index,omitempty"`
	TeamIndex     int        `json:"team_index,omitempty"`
	ItemID        string     `json:"item_id,omitempty"`
	IsCaptureItem bool       `json:"is_capture_item,omitempty"`
}

// WildActionType discriminates the wild Pokémon's choices.
type WildActionType string

const (
	WildActionUseMove  WildActionType = "use_move"
	WildActionStruggle WildActionType = "struggle"
	WildActionFlee     WildActionType = "flee"
)

// WildAction is the wild Pokémon's choice for one turn.
type WildAction struct {
	Type      WildActionType `json:"action_type"`
	MoveIndex int            `json:"move_index,omitempty"`
}

// WildPhase is the wild battle state machine position.
type WildPhase string

const (
	WildPhaseWaitingForAction WildPhase = "waiting_for_player_action"
	WildPhaseProcessing       WildPhase = "processing_turn"
	WildPhaseWaitingForSwitch WildPhase = "waiting_for_switch"
	WildPhaseFinished         WildPhase = "finished"
)

// PvPPhase is the PvP battle state machine position.
type PvPPhase string

const (
	PvPPhaseWaitingForBoth          PvPPhase = "waiting_for_both_players_actions"
	PvPPhaseWaitingForPlayer1       PvPPhase = "waiting_for_player1_action"
	PvPPhaseWaitingForPlayer2       PvPPhase = "waiting_for_player2_action"
	PvPPhaseProcessing              PvPPhase = "processing_turn"
	PvPPhaseWaitingForPlayer1Switch PvPPhase = "waiting_for_player1_switch"
	PvPPhaseWaitingForPlayer2Switch PvPPhase = "waiting_for_player2_switch"
	PvPPhaseFinished                PvPPhase = "finished"
)

// TurnOrder is the wild battle's per-turn ordering decision.
type TurnOrder string

const (
	TurnOrderPlayerFirst TurnOrder = "player_first"
	TurnOrderWildFirst   TurnOrder = "wild_first"
)

// PvPTurnOrder is the PvP battle's per-turn ordering decision.
type PvPTurnOrder string

const (
	PvPTurnOrderPlayer1First PvPTurnOrder = "player1_first"
	PvPTurnOrderPlayer2First PvPTurnOrder = "player2_first"
)

// SwitchReason explains a forced switch request.
type SwitchReason string

const (
	SwitchReasonFainted SwitchReason = "fainted"
	SwitchReasonForced  SwitchReason = "forced"
)

// WildOutcome is the per-player result of a wild battle.
type WildOutcome string

const (
	WildOutcomeVictory      WildOutcome = "victory"
	WildOutcomeCaptured     WildOutcome = "captured"
	WildOutcomeFled         WildOutcome = "fled"
	WildOutcomePlayerRan    WildOutcome = "player_ran"
	WildOutcomeDefeat       WildOutcome = "defeat"
	WildOutcomeDisconnected WildOutcome = "player_disconnected"
)

// WildEndReason explains why a wild battle ended.
type WildEndReason string

const (
	EndReasonWildDefeated     WildEndReason = "wild_pokemon_defeated"
	EndReasonWildCaptured     WildEndReason = "wild_pokemon_captured"
	EndReasonWildFled         WildEndReason = "wild_pokemon_fled"
	EndReasonPlayerRan        WildEndReason = "player_ran_away"
	EndReasonAllFainted       WildEndReason = "all_player_pokemon_fainted"
	EndReasonPlayerDisconnect WildEndReason = "player_disconnected"
)

// PvPOutcome is the per-player result of a PvP battle.
type PvPOutcome string

const (
	PvPOutcomeVictory              PvPOutcome = "victory"
	PvPOutcomeDefeat               PvPOutcome = "defeat"
	PvPOutcomeDraw                 PvPOutcome = "draw"
	PvPOutcomeSurrender            PvPOutcome = "surrender"
	PvPOutcomeOpponentSurrendered  PvPOutcome = "opponent_surrendered"
	PvPOutcomeDisconnected         PvPOutcome = "disconnected"
	PvPOutcomeOpponentDisconnected PvPOutcome = "opponent_disconnected"
)

// WildState is the full mutable state of one wild encounter. It is
// owned by the manager and only touched under the battle's lock.
type WildState struct {
	BattleID        uuid.UUID
	Player          BattlePlayer
	Wild            *BattlePokemon
	TurnNumber      int
	Phase           WildPhase
	PlayerAction    *Action
	WildAction      *WildAction
	TurnOrder       *TurnOrder
	Field           FieldState
	Log             []Event
	CaptureAttempts []CaptureAttempt
	Moves           *dex.MoveRepository
}

// NewWildState builds the initial state of a wild encounter.
func NewWildState(battleID uuid.UUID, player BattlePlayer, wild *BattlePokemon, moves *dex.MoveRepository) *WildState {
	return &WildState{
		BattleID:   battleID,
		Player:     player,
		Wild:       wild,
		TurnNumber: 1,
		Phase:      WildPhaseWaitingForAction,
		Moves:      moves,
	}
}

// PokemonFor resolves an entity reference against this battle.
func (s *WildState) PokemonFor(ref EntityRef) (*BattlePokemon, error) {
	switch ref.Kind {
	case EntityPlayer:
		if ref.TeamIndex < 0 || ref.TeamIndex >= len(s.Player.Team) {
			return nil, fmt.Errorf("team index %d out of range for wild battle %s", ref.TeamIndex, s.BattleID)
		}
		return s.Player.Team[ref.TeamIndex], nil
	case EntityWild:
		return s.Wild, nil
	default:
		return nil, fmt.Errorf("entity kind %q is not part of a wild battle", ref.Kind)
	}
}

// PvPState is the full mutable state of one PvP battle. It is owned by
// the manager and only touched under the battle's lock.
type PvPState struct {
	BattleID      uuid.UUID
	Player1       BattlePlayer
	Player2       BattlePlayer
	TurnNumber    int
	Phase         PvPPhase
	Player1Action *Action
	Player2Action *Action
	TurnOrder     *PvPTurnOrder
	Field         FieldState
	Log           []Event
	SurrenderedBy string
	Moves         *dex.MoveRepository
}

// NewPvPState builds the initial state of a PvP battle.
func NewPvPState(battleID uuid.UUID, player1, player2 BattlePlayer, moves *dex.MoveRepository) *PvPState {
	return &PvPState{
		BattleID: battleID,
		Player1:  player1,
		Player2:  player2,
		TurnNumber: 1,
		Phase:      PvPPhaseWaitingForBoth,
		Moves:      moves,
	}
}

// PokemonFor resolves an entity reference against this battle.
func (s *PvPState) PokemonFor(ref EntityRef) (*BattlePokemon, error) {
	var team []*BattlePokemon
	switch ref.Kind {
	case EntityPlayer1:
		team = s.Player1.Team
	case EntityPlayer2:
		team = s.Player2.Team
	default:
		return nil, fmt.Errorf("entity kind %q is not part of a PvP battle", ref.Kind)
	}
	if ref.TeamIndex < 0 || ref.TeamIndex >= len(team) {
		return nil, fmt.Errorf("team index %d out of range for PvP battle %s", ref.TeamIndex, s.BattleID)
	}
	return team[ref.TeamIndex], nil
}

// PlayerByID returns the side owned by the given player id.
func (s *PvPState) PlayerByID(playerID string) (*BattlePlayer, bool) {
	switch playerID {
	case s.Player1.PlayerID:
		return &s.Player1, true
	case s.Player2.PlayerID:
		return &s.Player2, true
	default:
		return nil, false
	}
}

// OpponentID returns the other participant's player id.
func (s *PvPState) OpponentID(playerID string) (string, bool) {
	switch playerID {
	case s.Player1.PlayerID:
		return s.Player2.PlayerID, true
	case s.Player2.PlayerID:
		return s.Player1.PlayerID, true
	default:
		return "", false
	}
}

// BothActionsSubmitted reports whether both sides have chosen.
func (s *PvPState) BothActionsSubmitted() bool {
	return s.Player1Action != nil && s.Player2Action != nil
}

// ReadyForProcessing reports whether the turn can resolve in the
// current phase with the actions submitted so far.
func (s *PvPState) ReadyForProcessing() bool {
	switch s.Phase {
	case PvPPhaseWaitingForBoth:
		return s.BothActionsSubmitted()
	case PvPPhaseWaitingForPlayer1, PvPPhaseWaitingForPlayer1Switch:
		return s.Player1Action != nil
	case PvPPhaseWaitingForPlayer2, PvPPhaseWaitingForPlayer2Switch:
		return s.Player2Action != nil
	default:
		return false
	}
}
