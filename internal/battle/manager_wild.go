package battle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/collection"
)

// StartWildBattle engages a player with a spawned wild monster. On
// success the player has received the battle start and first action
// request; on failure all world flags are rolled back.
func (m *Manager) StartWildBattle(ctx context.Context, playerID, instanceID string) (uuid.UUID, error) {
	playerName, ok := m.world.PlayerName(playerID)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s is not in the world", playerID)
	}

	monster, ok := m.world.Monster(instanceID)
	if !ok {
		return uuid.Nil, fmt.Errorf("wild monster %s not found", instanceID)
	}
	if monster.InCombat {
		return uuid.Nil, fmt.Errorf("wild monster %s is already in a battle", instanceID)
	}

	team, err := m.loadTeam(ctx, playerID)
	if err != nil {
		return uuid.Nil, err
	}
	activeIndex, ok := firstUsableIndex(team)
	if !ok {
		return uuid.Nil, fmt.Errorf("player %s has no usable Pokémon", playerID)
	}

	wild, err := FromWildMonster(monster, m.templates)
	if err != nil {
		return uuid.Nil, err
	}

	if !m.world.SetMonsterInCombat(instanceID, true) {
		return uuid.Nil, fmt.Errorf("wild monster %s despawned before the battle started", instanceID)
	}
	m.world.SetInCombat(playerID, true)

	battleID := uuid.New()
	state := NewWildState(battleID, BattlePlayer{
		PlayerID:    playerID,
		Name:        playerName,
		Team:        team,
		ActiveIndex: activeIndex,
	}, wild, m.moves)
	m.wild.Put(battleID, state)

	m.logger.Info("wild battle started",
		zap.String("battle_id", battleID.String()),
		zap.String("player_id", playerID),
		zap.String("instance_id", instanceID),
		zap.Int("team_size", len(team)))

	start := newWildBattleStartMessage(state)
	request := newWildRequestActionMessage(state)

	if err := m.world.Send(ctx, playerID, start); err != nil {
		m.wild.Delete(battleID)
		m.world.SetMonsterInCombat(instanceID, false)
		m.world.SetInCombat(playerID, false)
		return uuid.Nil, fmt.Errorf("delivering battle start: %w", err)
	}
	if err := m.world.Send(ctx, playerID, request); err != nil {
		m.logger.Warn("failed to deliver action request",
			zap.String("battle_id", battleID.String()), zap.Error(err))
	}

	return battleID, nil
}

func (m *Manager) handleWildAction(ctx context.Context, battleID uuid.UUID, entry *tableEntry[*WildState], playerID string, action Action) error {
	entry.mu.Lock()
	s := entry.state

	if s.Player.PlayerID != playerID {
		entry.mu.Unlock()
		return fmt.Errorf("player %s is not part of battle %s", playerID, battleID)
	}

	switch s.Phase {
	case WildPhaseWaitingForAction:
	case WildPhaseWaitingForSwitch:
		if action.Type != ActionSwitch {
			entry.mu.Unlock()
			return fmt.Errorf("a switch is required, not %s", action.Type)
		}
	default:
		entry.mu.Unlock()
		return fmt.Errorf("not expecting an action in phase %s", s.Phase)
	}

	if err := validateWildAction(s, action); err != nil {
		entry.mu.Unlock()
		return fmt.Errorf("invalid action: %w", err)
	}

	s.PlayerAction = &action
	wildAction := DetermineWildAction(s.Wild)
	s.WildAction = &wildAction
	s.Phase = WildPhaseProcessing
	turn := s.TurnNumber

	events := ResolveWildTurn(s, m.rng)

	update := newTurnUpdateMessage(battleID, turn, events)
	var followup any
	finished := false
	switch s.Phase {
	case WildPhaseWaitingForAction:
		followup = newWildRequestActionMessage(s)
	case WildPhaseWaitingForSwitch:
		followup = newRequestSwitchMessage(battleID, SwitchReasonFainted, s.Player.Team)
	case WildPhaseFinished:
		finished = true
	}
	entry.mu.Unlock()

	m.logger.Debug("wild turn resolved",
		zap.String("battle_id", battleID.String()),
		zap.Int("turn", turn),
		zap.Int("events", len(events)))

	if err := m.world.Send(ctx, playerID, update); err != nil {
		m.logger.Warn("failed to deliver turn update",
			zap.String("battle_id", battleID.String()), zap.Error(err))
	}
	if followup != nil {
		if err := m.world.Send(ctx, playerID, followup); err != nil {
			m.logger.Warn("failed to deliver followup request",
				zap.String("battle_id", battleID.String()), zap.Error(err))
		}
	}

	if finished {
		m.endWildBattle(ctx, battleID, false)
	}
	return nil
}

func validateWildAction(s *WildState, action Action) error {
	switch action.Type {
	case ActionUseMove:
		active := s.Player.Active()
		if action.MoveIndex < 0 || action.MoveIndex >= len(active.Moves) {
			return fmt.Errorf("move index %d out of range", action.MoveIndex)
		}
		if active.Moves[action.MoveIndex].CurrentPP <= 0 {
			return fmt.Errorf("that move has no PP left")
		}
	case ActionSwitch:
		if action.TeamIndex < 0 || action.TeamIndex >= len(s.Player.Team) {
			return fmt.Errorf("switch target %d out of range", action.TeamIndex)
		}
		if action.TeamIndex == s.Player.ActiveIndex {
			return fmt.Errorf("that Pokémon is already in battle")
		}
		if !s.Player.Team[action.TeamIndex].Usable() {
			return fmt.Errorf("that Pokémon has fainted")
		}
	case ActionUseItem, ActionRun:
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	return nil
}

// wildBattleResult is the data extracted under the battle lock before
// end-of-battle side effects run without it.
type wildBattleResult struct {
	playerID       string
	wildInstanceID string
	outcome        WildOutcome
	reason         WildEndReason
	captured       bool
	expRecipient   string
	expAmount      int64
}

func pokemonHPUpdate(hp int) collection.PokemonUpdate {
	return collection.PokemonUpdate{CurrentHP: &hp}
}

// endWildBattle removes the battle and applies its consequences:
// collection write-backs, experience, capture, despawn and the end
// message. It tolerates a battle already removed by a concurrent end
// path.
func (m *Manager) endWildBattle(ctx context.Context, battleID uuid.UUID, disconnected bool) {
	entry, ok := m.wild.Delete(battleID)
	if !ok {
		return
	}

	entry.mu.Lock()
	s := entry.state

	result := wildBattleResult{
		playerID:       s.Player.PlayerID,
		wildInstanceID: s.Wild.InstanceID,
	}

	captureSucceeded := false
	if n := len(s.CaptureAttempts); n > 0 && s.CaptureAttempts[n-1].Success {
		captureSucceeded = true
	}
	ranAway := false
	for _, ev := range s.Log {
		if ev.Type == EventRanAway && ev.RunSuccess != nil && *ev.RunSuccess {
			ranAway = true
			break
		}
	}

	switch {
	case disconnected:
		result.outcome, result.reason = WildOutcomeDisconnected, EndReasonPlayerDisconnect
	case captureSucceeded:
		result.outcome, result.reason = WildOutcomeCaptured, EndReasonWildCaptured
		result.captured = true
	case s.Wild.Fainted:
		result.outcome, result.reason = WildOutcomeVictory, EndReasonWildDefeated
		result.expRecipient = s.Player.Active().InstanceID
		result.expAmount = WildExpGain(s.Wild, m.templates)
	case s.Player.AllFainted():
		result.outcome, result.reason = WildOutcomeDefeat, EndReasonAllFainted
	case ranAway:
		result.outcome, result.reason = WildOutcomePlayerRan, EndReasonPlayerRan
	default:
		m.logger.Warn("wild battle finished without a clear outcome",
			zap.String("battle_id", battleID.String()))
		result.outcome, result.reason = WildOutcomeFled, EndReasonWildFled
	}

	type memberUpdate struct {
		id string
		hp int
	}
	updates := make([]memberUpdate, 0, len(s.Player.Team))
	for _, member := range s.Player.Team {
		updates = append(updates, memberUpdate{id: member.InstanceID, hp: member.CurrentHP})
	}
	var capturedWild *BattlePokemon
	if result.captured {
		copied := *s.Wild
		capturedWild = &copied
	}
	entry.mu.Unlock()

	m.logger.Info("wild battle ended",
		zap.String("battle_id", battleID.String()),
		zap.String("player_id", result.playerID),
		zap.String("outcome", string(result.outcome)),
		zap.String("reason", string(result.reason)))

	for _, u := range updates {
		if err := m.store.UpdatePokemon(ctx, result.playerID, u.id, pokemonHPUpdate(u.hp)); err != nil {
			m.logger.Error("failed to write back battle HP",
				zap.String("pokemon_id", u.id), zap.Error(err))
		}
	}

	despawn := result.captured || result.outcome == WildOutcomeVictory
	if despawn {
		if m.world.DespawnMonster(ctx, result.wildInstanceID) {
			if err := m.world.Broadcast(ctx, MonsterDespawnedMessage{
				Type:       MsgMonsterDespawned,
				InstanceID: result.wildInstanceID,
			}); err != nil {
				m.logger.Warn("failed to broadcast despawn", zap.Error(err))
			}
		}
	} else {
		m.world.SetMonsterInCombat(result.wildInstanceID, false)
	}

	if disconnected {
		// No one to message, and presence cleanup happens on the
		// disconnect path itself.
		return
	}

	m.world.SetInCombat(result.playerID, false)

	partyChanged := false
	if result.expAmount > 0 {
		_, leveled, err := m.store.AddExperience(ctx, result.playerID, result.expRecipient, result.expAmount)
		if err != nil {
			m.logger.Error("failed to award experience",
				zap.String("pokemon_id", result.expRecipient), zap.Error(err))
		} else {
			partyChanged = true
			m.logger.Debug("awarded experience",
				zap.String("pokemon_id", result.expRecipient),
				zap.Int64("amount", result.expAmount),
				zap.Bool("leveled_up", leveled))
		}
	}
	if capturedWild != nil {
		record := CapturedRecord(capturedWild)
		if err := m.store.AddPokemon(ctx, result.playerID, record); err != nil {
			m.logger.Error("failed to store captured Pokémon",
				zap.String("instance_id", result.wildInstanceID), zap.Error(err))
		} else {
			partyChanged = true
		}
	}

	if partyChanged {
		if records, err := m.store.ActivePokemon(ctx, result.playerID); err == nil {
			if err := m.world.Send(ctx, result.playerID, ActivePokemonMessage{
				Type:    MsgActivePokemon,
				Pokemon: records,
			}); err != nil {
				m.logger.Warn("failed to refresh party", zap.Error(err))
			}
		}
	}

	if err := m.world.Send(ctx, result.playerID, BattleEndMessage{
		Type:     MsgBattleEnd,
		BattleID: battleID,
		Outcome:  string(result.outcome),
		Reason:   string(result.reason),
	}); err != nil {
		m.logger.Warn("failed to deliver battle end", zap.Error(err))
	}
}
