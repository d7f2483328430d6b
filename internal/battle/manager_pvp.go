package battle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/collection"
)

// StartPvPBattle starts a battle between two connected players. Both
// receive the battle start and the first action request.
func (m *Manager) StartPvPBattle(ctx context.Context, player1ID, player2ID string) (uuid.UUID, error) {
	if player1ID == player2ID {
		return uuid.Nil, fmt.Errorf("a player cannot battle themselves")
	}

	name1, ok := m.world.PlayerName(player1ID)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s is not in the world", player1ID)
	}
	name2, ok := m.world.PlayerName(player2ID)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s is not in the world", player2ID)
	}

	team1, err := m.loadTeam(ctx, player1ID)
	if err != nil {
		return uuid.Nil, err
	}
	team2, err := m.loadTeam(ctx, player2ID)
	if err != nil {
		return uuid.Nil, err
	}
	active1, ok := firstUsableIndex(team1)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s has no usable Pokémon", player1ID)
	}
	active2, ok := firstUsableIndex(team2)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s has no usable Pokémon", player2ID)
	}

	m.world.SetInCombat(player1ID, true)
	m.world.SetInCombat(player2ID, true)

	battleID := uuid.New()
	state := NewPvPState(battleID,
		BattlePlayer{PlayerID: player1ID, Name: name1, Team: team1, ActiveIndex: active1},
		BattlePlayer{PlayerID: player2ID, Name: name2, Team: team2, ActiveIndex: active2},
		m.moves)
	m.pvp.Put(battleID, state)

	m.logger.Info("pvp battle started",
		zap.String("battle_id", battleID.String()),
		zap.String("player1_id", player1ID),
		zap.String("player2_id", player2ID))

	start1 := newPvPBattleStartMessage(state, &state.Player1, &state.Player2)
	start2 := newPvPBattleStartMessage(state, &state.Player2, &state.Player1)
	request1 := newPvPRequestActionMessage(state, &state.Player1, &state.Player2)
	request2 := newPvPRequestActionMessage(state, &state.Player2, &state.Player1)

	if err := m.world.Send(ctx, player1ID, start1); err != nil {
		m.pvp.Delete(battleID)
		m.world.SetInCombat(player1ID, false)
		m.world.SetInCombat(player2ID, false)
		return uuid.Nil, fmt.Errorf("delivering battle start: %w", err)
	}
	if err := m.world.Send(ctx, player2ID, start2); err != nil {
		m.pvp.Delete(battleID)
		m.world.SetInCombat(player1ID, false)
		m.world.SetInCombat(player2ID, false)
		return uuid.Nil, fmt.Errorf("delivering battle start: %w", err)
	}
	for playerID, request := range map[string]RequestActionMessage{player1ID: request1, player2ID: request2} {
		if err := m.world.Send(ctx, playerID, request); err != nil {
			m.logger.Warn("failed to deliver action request",
				zap.String("battle_id", battleID.String()),
				zap.String("player_id", playerID), zap.Error(err))
		}
	}

	return battleID, nil
}

func (m *Manager) handlePvPAction(ctx context.Context, battleID uuid.UUID, entry *tableEntry[*PvPState], playerID string, action Action) error {
	entry.mu.Lock()
	s := entry.state

	side, ok := s.PlayerByID(playerID)
	if !ok {
		entry.mu.Unlock()
		return fmt.Errorf("player %s is not part of battle %s", playerID, battleID)
	}
	isPlayer1 := side == &s.Player1

	if err := pvpPhaseAllows(s, isPlayer1, action); err != nil {
		entry.mu.Unlock()
		return err
	}
	if err := validatePvPAction(side, action); err != nil {
		entry.mu.Unlock()
		return fmt.Errorf("invalid action: %w", err)
	}

	if isPlayer1 {
		s.Player1Action = &action
	} else {
		s.Player2Action = &action
	}

	if !s.ReadyForProcessing() {
		// Only one action is in; tell the state machine who is left.
		if s.Phase == PvPPhaseWaitingForBoth {
			if isPlayer1 {
				s.Phase = PvPPhaseWaitingForPlayer2
			} else {
				s.Phase = PvPPhaseWaitingForPlayer1
			}
		}
		entry.mu.Unlock()
		return nil
	}

	s.Phase = PvPPhaseProcessing
	turn := s.TurnNumber
	events := ResolvePvPTurn(s, m.templates, m.rng)

	player1ID := s.Player1.PlayerID
	player2ID := s.Player2.PlayerID
	update := newTurnUpdateMessage(battleID, turn, events)

	followups := make(map[string]any, 2)
	finished := false
	switch s.Phase {
	case PvPPhaseWaitingForBoth:
		followups[player1ID] = newPvPRequestActionMessage(s, &s.Player1, &s.Player2)
		followups[player2ID] = newPvPRequestActionMessage(s, &s.Player2, &s.Player1)
	case PvPPhaseWaitingForPlayer1Switch:
		followups[player1ID] = newRequestSwitchMessage(battleID, SwitchReasonFainted, s.Player1.Team)
	case PvPPhaseWaitingForPlayer2Switch:
		followups[player2ID] = newRequestSwitchMessage(battleID, SwitchReasonFainted, s.Player2.Team)
	case PvPPhaseFinished:
		finished = true
	}
	entry.mu.Unlock()

	m.logger.Debug("pvp turn resolved",
		zap.String("battle_id", battleID.String()),
		zap.Int("turn", turn),
		zap.Int("events", len(events)))

	for _, id := range []string{player1ID, player2ID} {
		if err := m.world.Send(ctx, id, update); err != nil {
			m.logger.Warn("failed to deliver turn update",
				zap.String("battle_id", battleID.String()),
				zap.String("player_id", id), zap.Error(err))
		}
	}
	for id, msg := range followups {
		if err := m.world.Send(ctx, id, msg); err != nil {
			m.logger.Warn("failed to deliver followup request",
				zap.String("battle_id", battleID.String()),
				zap.String("player_id", id), zap.Error(err))
		}
	}

	if finished {
		m.endPvPBattle(ctx, battleID, "")
	}
	return nil
}

// pvpPhaseAllows checks that the submitting side may act in the
// current phase. Switch phases only accept switches from the side that
// owes one.
func pvpPhaseAllows(s *PvPState, isPlayer1 bool, action Action) error {
	switch s.Phase {
	case PvPPhaseWaitingForBoth:
		if isPlayer1 && s.Player1Action != nil {
			return fmt.Errorf("action already submitted for this turn")
		}
		if !isPlayer1 && s.Player2Action != nil {
			return fmt.Errorf("action already submitted for this turn")
		}
		return nil
	case PvPPhaseWaitingForPlayer1:
		if !isPlayer1 {
			return fmt.Errorf("action already submitted for this turn")
		}
		return nil
	case PvPPhaseWaitingForPlayer2:
		if isPlayer1 {
			return fmt.Errorf("action already submitted for this turn")
		}
		return nil
	case PvPPhaseWaitingForPlayer1Switch:
		if !isPlayer1 {
			return fmt.Errorf("waiting for your opponent to switch")
		}
		if action.Type != ActionSwitch {
			return fmt.Errorf("a switch is required, not %s", action.Type)
		}
		return nil
	case PvPPhaseWaitingForPlayer2Switch:
		if isPlayer1 {
			return fmt.Errorf("waiting for your opponent to switch")
		}
		if action.Type != ActionSwitch {
			return fmt.Errorf("a switch is required, not %s", action.Type)
		}
		return nil
	default:
		return fmt.Errorf("not expecting an action in phase %s", s.Phase)
	}
}

func validatePvPAction(side *BattlePlayer, action Action) error {
	switch action.Type {
	case ActionUseMove:
		active := side.Active()
		if action.MoveIndex < 0 || action.MoveIndex >= len(active.Moves) {
			return fmt.Errorf("move index %d out of range", action.MoveIndex)
		}
		if active.Moves[action.MoveIndex].CurrentPP <= 0 {
			return fmt.Errorf("that move has no PP left")
		}
	case ActionSwitch:
		if action.TeamIndex < 0 || action.TeamIndex >= len(side.Team) {
			return fmt.Errorf("switch target %d out of range", action.TeamIndex)
		}
		if action.TeamIndex == side.ActiveIndex {
			return fmt.Errorf("that Pokémon is already in battle")
		}
		if !side.Team[action.TeamIndex].Usable() {
			return fmt.Errorf("that Pokémon has fainted")
		}
	case ActionUseItem:
		if action.IsCaptureItem {
			return fmt.Errorf("capture items cannot be used in PvP battles")
		}
	case ActionRun:
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	return nil
}

// endPvPBattle removes the battle, writes every team member back to
// the collection and reports the outcome to both sides. When a player
// disconnected, their id is passed so messaging skips them.
func (m *Manager) endPvPBattle(ctx context.Context, battleID uuid.UUID, disconnectedID string) {
	entry, ok := m.pvp.Delete(battleID)
	if !ok {
		return
	}

	entry.mu.Lock()
	s := entry.state

	player1ID := s.Player1.PlayerID
	player2ID := s.Player2.PlayerID

	var outcome1, outcome2 PvPOutcome
	switch {
	case disconnectedID == player1ID:
		outcome1, outcome2 = PvPOutcomeDisconnected, PvPOutcomeOpponentDisconnected
	case disconnectedID == player2ID:
		outcome1, outcome2 = PvPOutcomeOpponentDisconnected, PvPOutcomeDisconnected
	case s.SurrenderedBy == player1ID:
		outcome1, outcome2 = PvPOutcomeSurrender, PvPOutcomeOpponentSurrendered
	case s.SurrenderedBy == player2ID:
		outcome1, outcome2 = PvPOutcomeOpponentSurrendered, PvPOutcomeSurrender
	case s.Player1.AllFainted() && s.Player2.AllFainted():
		outcome1, outcome2 = PvPOutcomeDraw, PvPOutcomeDraw
	case s.Player1.AllFainted():
		outcome1, outcome2 = PvPOutcomeDefeat, PvPOutcomeVictory
	case s.Player2.AllFainted():
		outcome1, outcome2 = PvPOutcomeVictory, PvPOutcomeDefeat
	default:
		m.logger.Warn("pvp battle finished without a clear winner",
			zap.String("battle_id", battleID.String()))
		outcome1, outcome2 = PvPOutcomeDraw, PvPOutcomeDraw
	}

	type memberUpdate struct {
		playerID  string
		pokemonID string
		update    collection.PokemonUpdate
	}
	var updates []memberUpdate
	for _, member := range s.Player1.Team {
		updates = append(updates, memberUpdate{player1ID, member.InstanceID, RecordUpdate(member)})
	}
	for _, member := range s.Player2.Team {
		updates = append(updates, memberUpdate{player2ID, member.InstanceID, RecordUpdate(member)})
	}
	entry.mu.Unlock()

	m.logger.Info("pvp battle ended",
		zap.String("battle_id", battleID.String()),
		zap.String("player1_outcome", string(outcome1)),
		zap.String("player2_outcome", string(outcome2)))

	for _, u := range updates {
		if err := m.store.UpdatePokemon(ctx, u.playerID, u.pokemonID, u.update); err != nil {
			m.logger.Error("failed to write back battle state",
				zap.String("pokemon_id", u.pokemonID), zap.Error(err))
		}
	}

	for id, outcome := range map[string]PvPOutcome{player1ID: outcome1, player2ID: outcome2} {
		if id != disconnectedID {
			m.world.SetInCombat(id, false)
			if err := m.world.Send(ctx, id, BattleEndMessage{
				Type:     MsgBattleEnd,
				BattleID: battleID,
				Outcome:  string(outcome),
				Reason:   pvpEndReason(outcome),
			}); err != nil {
				m.logger.Warn("failed to deliver battle end",
					zap.String("player_id", id), zap.Error(err))
			}
		}
	}
}

func pvpEndReason(outcome PvPOutcome) string {
	switch outcome {
	case PvPOutcomeVictory, PvPOutcomeDefeat:
		return "all_pokemon_fainted"
	case PvPOutcomeDraw:
		return "draw"
	case PvPOutcomeSurrender, PvPOutcomeOpponentSurrendered:
		return "surrender"
	default:
		return "player_disconnected"
	}
}
