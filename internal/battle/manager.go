package battle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/collection"
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/lobby"
)

// World is the slice of the lobby the battle manager needs: player and
// monster presence plus message delivery. *lobby.Lobby satisfies it.
type World interface {
	PlayerName(playerID string) (string, bool)
	SetInCombat(playerID string, inCombat bool) bool
	Monster(instanceID string) (lobby.WildMonster, bool)
	SetMonsterInCombat(instanceID string, inCombat bool) bool
	DespawnMonster(ctx context.Context, instanceID string) bool
	Send(ctx context.Context, playerID string, message any) error
	Broadcast(ctx context.Context, message any) error
}

// ErrBattleNotFound is returned when a battle id matches no live battle.
var ErrBattleNotFound = errors.New("battle not found")

// Manager owns all live battles. State is only touched under the
// per-battle entry lock, and the lock is always released before any
// message send.
type Manager struct {
	logger    *zap.Logger
	store     collection.Store
	world     World
	templates *dex.TemplateRepository
	moves     *dex.MoveRepository
	rng       Rand

	wild *table[*WildState]
	pvp  *table[*PvPState]
}

// NewManager creates a battle manager with no live battles.
func NewManager(store collection.Store, world World, templates *dex.TemplateRepository, rng Rand, logger *zap.Logger) *Manager {
	if rng == nil {
		rng = NewRand()
	}
	return &Manager{
		logger:    logger,
		store:     store,
		world:     world,
		templates: templates,
		moves:     templates.Moves(),
		rng:       rng,
		wild:      newTable[*WildState](),
		pvp:       newTable[*PvPState](),
	}
}

// HandlePlayerAction routes a submitted action to the battle it
// belongs to.
func (m *Manager) HandlePlayerAction(ctx context.Context, battleID uuid.UUID, playerID string, action Action) error {
	if entry, ok := m.wild.Get(battleID); ok {
		return m.handleWildAction(ctx, battleID, entry, playerID, action)
	}
	if entry, ok := m.pvp.Get(battleID); ok {
		return m.handlePvPAction(ctx, battleID, entry, playerID, action)
	}
	return fmt.Errorf("%w: %s", ErrBattleNotFound, battleID)
}

// FindBattlesForPlayer returns the ids of battles the player is part
// of. A player is in at most one wild and one PvP battle, but both at
// once is tolerated rather than assumed away.
func (m *Manager) FindBattlesForPlayer(playerID string) []uuid.UUID {
	var ids []uuid.UUID
	if id, _, ok := m.wild.Find(func(s *WildState) bool {
		return s.Player.PlayerID == playerID
	}); ok {
		ids = append(ids, id)
	}
	if id, _, ok := m.pvp.Find(func(s *PvPState) bool {
		return s.Player1.PlayerID == playerID || s.Player2.PlayerID == playerID
	}); ok {
		ids = append(ids, id)
	}
	return ids
}

// HandleDisconnect force-ends every battle the player is part of.
func (m *Manager) HandleDisconnect(ctx context.Context, playerID string) {
	if id, _, ok := m.wild.Find(func(s *WildState) bool {
		return s.Player.PlayerID == playerID
	}); ok {
		m.logger.Info("ending wild battle on disconnect",
			zap.String("battle_id", id.String()), zap.String("player_id", playerID))
		m.endWildBattle(ctx, id, true)
	}
	if id, _, ok := m.pvp.Find(func(s *PvPState) bool {
		return s.Player1.PlayerID == playerID || s.Player2.PlayerID == playerID
	}); ok {
		m.logger.Info("ending pvp battle on disconnect",
			zap.String("battle_id", id.String()), zap.String("player_id", playerID))
		m.endPvPBattle(ctx, id, playerID)
	}
}

// ActiveBattleCount reports how many battles are live.
func (m *Manager) ActiveBattleCount() int {
	return m.wild.Len() + m.pvp.Len()
}

// loadTeam fetches the player's party and converts it for battle.
func (m *Manager) loadTeam(ctx context.Context, playerID string) ([]*BattlePokemon, error) {
	records, err := m.store.ActivePokemon(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading party for %s: %w", playerID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("player %s has no Pokémon", playerID)
	}

	team := make([]*BattlePokemon, 0, len(records))
	for i, rec := range records {
		member, err := FromRecord(rec, i, m.templates)
		if err != nil {
			return nil, err
		}
		team = append(team, member)
	}
	return team, nil
}

// firstUsableIndex picks the initial active slot.
func firstUsableIndex(team []*BattlePokemon) (int, bool) {
	for i, member := range team {
		if member.Usable() {
			return i, true
		}
	}
	return 0, false
}
