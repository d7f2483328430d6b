package lobby

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

type captureMessenger struct {
	mu         sync.Mutex
	sent       map[string][]any
	broadcasts []any
}

func newCaptureMessenger() *captureMessenger {
	return &captureMessenger{sent: make(map[string][]any)}
}

func (m *captureMessenger) Send(ctx context.Context, playerID string, message any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[playerID] = append(m.sent[playerID], message)
	return nil
}

func (m *captureMessenger) Broadcast(ctx context.Context, message any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, message)
	return nil
}

func TestLobbyPlayerPresence(t *testing.T) {
	l := New("overworld", newCaptureMessenger(), zaptest.NewLogger(t))

	assert.False(t, l.IsPresent("player-1"))
	_, ok := l.PlayerName("player-1")
	assert.False(t, ok)

	l.AddPlayer("player-1", "Red")
	assert.True(t, l.IsPresent("player-1"))
	name, ok := l.PlayerName("player-1")
	require.True(t, ok)
	assert.Equal(t, "Red", name)

	l.RemovePlayer("player-1")
	assert.False(t, l.IsPresent("player-1"))
}

func TestLobbySetInCombat(t *testing.T) {
	l := New("overworld", newCaptureMessenger(), zaptest.NewLogger(t))

	assert.False(t, l.SetInCombat("ghost", true), "unknown players are reported")

	l.AddPlayer("player-1", "Red")
	assert.True(t, l.SetInCombat("player-1", true))
	assert.True(t, l.SetInCombat("player-1", false))
}

func TestLobbyMonsterLifecycle(t *testing.T) {
	ctx := context.Background()
	l := New("overworld", newCaptureMessenger(), zaptest.NewLogger(t))

	_, ok := l.Monster("wild-1")
	assert.False(t, ok)

	l.AddMonster(WildMonster{
		InstanceID: "wild-1",
		TemplateID: 19,
		Name:       "Rattata",
		Level:      5,
		Stats:      stats.StatSet{HP: 19, Speed: 15},
		CurrentHP:  19,
	})

	m, ok := l.Monster("wild-1")
	require.True(t, ok)
	assert.Equal(t, "Rattata", m.Name)
	assert.False(t, m.InCombat)

	require.True(t, l.SetMonsterInCombat("wild-1", true))
	m, _ = l.Monster("wild-1")
	assert.True(t, m.InCombat)

	assert.False(t, l.SetMonsterInCombat("missing", true))

	assert.True(t, l.DespawnMonster(ctx, "wild-1"))
	assert.False(t, l.DespawnMonster(ctx, "wild-1"), "despawn is idempotent")
	_, ok = l.Monster("wild-1")
	assert.False(t, ok)
}

func TestLobbyMonsterSnapshotIsACopy(t *testing.T) {
	l := New("overworld", newCaptureMessenger(), zaptest.NewLogger(t))
	l.AddMonster(WildMonster{InstanceID: "wild-1", CurrentHP: 19})

	m, ok := l.Monster("wild-1")
	require.True(t, ok)
	m.CurrentHP = 0

	again, _ := l.Monster("wild-1")
	assert.Equal(t, 19, again.CurrentHP, "callers cannot mutate lobby state through snapshots")
}

func TestLobbySendRequiresPresence(t *testing.T) {
	ctx := context.Background()
	messenger := newCaptureMessenger()
	l := New("overworld", messenger, zaptest.NewLogger(t))

	err := l.Send(ctx, "player-1", "hello")
	assert.ErrorContains(t, err, "not in lobby")

	l.AddPlayer("player-1", "Red")
	require.NoError(t, l.Send(ctx, "player-1", "hello"))
	assert.Len(t, messenger.sent["player-1"], 1)

	require.NoError(t, l.Broadcast(ctx, "everyone"))
	assert.Len(t, messenger.broadcasts, 1)
}
