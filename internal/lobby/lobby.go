package lobby

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// Messenger delivers server messages to connected players. The
// WebSocket implementation lives in messenger.go; tests use a capture
// fake.
type Messenger interface {
	Send(ctx context.Context, playerID string, message any) error
	Broadcast(ctx context.Context, message any) error
}

// PlayerState is a player's presence in the world.
type PlayerState struct {
	PlayerID string
	Username string
	X        float64
	Y        float64
	InCombat bool
}

// MonsterMove is one of a wild monster's moves with remaining PP.
type MonsterMove struct {
	ID          int `json:"id"`
	PPRemaining int `json:"pp_remaining"`
}

// WildMonster is a spawned monster roaming the map. The battle engine
// copies it at battle start and only touches the InCombat flag here.
type WildMonster struct {
	InstanceID string
	TemplateID int
	Name       string
	Level      int
	Stats      stats.StatSet
	IVs        stats.StatSet
	EVs        stats.StatSet
	Nature     stats.Nature
	Types      []dex.PokemonType
	Ability    string
	Moves      []MonsterMove
	CurrentHP  int
	Status     dex.StatusCondition
	X          float64
	Y          float64
	InCombat   bool
}

// Lobby tracks player presence and active wild monsters for one world
// instance. All methods are safe for concurrent use.
type Lobby struct {
	ID        string
	messenger Messenger
	logger    *zap.Logger

	mu       sync.RWMutex
	players  map[string]*PlayerState
	monsters map[string]*WildMonster
}

// New creates an empty lobby.
func New(id string, messenger Messenger, logger *zap.Logger) *Lobby {
	return &Lobby{
		ID:        id,
		messenger: messenger,
		logger:    logger,
		players:   make(map[string]*PlayerState),
		monsters:  make(map[string]*WildMonster),
	}
}

// AddPlayer registers a player in the lobby.
func (l *Lobby) AddPlayer(playerID, username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[playerID] = &PlayerState{PlayerID: playerID, Username: username}
	l.logger.Info("player joined lobby", zap.String("lobby_id", l.ID), zap.String("player_id", playerID))
}

// RemovePlayer drops a player from the lobby.
func (l *Lobby) RemovePlayer(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, playerID)
	l.logger.Info("player left lobby", zap.String("lobby_id", l.ID), zap.String("player_id", playerID))
}

// IsPresent reports whether the player is currently in the lobby.
func (l *Lobby) IsPresent(playerID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.players[playerID]
	return ok
}

// PlayerName returns the player's display name.
func (l *Lobby) PlayerName(playerID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	state, ok := l.players[playerID]
	if !ok {
		return "", false
	}
	return state.Username, true
}

// SetInCombat flips the player's in-combat flag, reporting whether the
// player was present.
func (l *Lobby) SetInCombat(playerID string, inCombat bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.players[playerID]
	if !ok {
		return false
	}
	state.InCombat = inCombat
	return true
}

// AddMonster registers a spawned wild monster.
func (l *Lobby) AddMonster(monster WildMonster) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := monster
	l.monsters[monster.InstanceID] = &copied
}

// Monster returns a snapshot of a wild monster by instance id.
func (l *Lobby) Monster(instanceID string) (WildMonster, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.monsters[instanceID]
	if !ok {
		return WildMonster{}, false
	}
	return *m, true
}

// SetMonsterInCombat flips the monster's engaged flag, reporting
// whether the monster exists.
func (l *Lobby) SetMonsterInCombat(instanceID string, inCombat bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.monsters[instanceID]
	if !ok {
		return false
	}
	m.InCombat = inCombat
	return true
}

// DespawnMonster removes a monster from the world, reporting whether
// it was still present.
func (l *Lobby) DespawnMonster(ctx context.Context, instanceID string) bool {
	l.mu.Lock()
	_, ok := l.monsters[instanceID]
	delete(l.monsters, instanceID)
	l.mu.Unlock()
	if !ok {
		return false
	}
	l.logger.Info("monster despawned", zap.String("lobby_id", l.ID), zap.String("instance_id", instanceID))
	return true
}

// Send delivers a message to one player in the lobby.
func (l *Lobby) Send(ctx context.Context, playerID string, message any) error {
	if !l.IsPresent(playerID) {
		return fmt.Errorf("player %s not in lobby %s", playerID, l.ID)
	}
	return l.messenger.Send(ctx, playerID, message)
}

// Broadcast delivers a message to every player in the lobby.
func (l *Lobby) Broadcast(ctx context.Context, message any) error {
	return l.messenger.Broadcast(ctx, message)
}
