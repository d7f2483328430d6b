package integration

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pokewilds/pokewilds-server-go/internal/battle"
	"github.com/pokewilds/pokewilds-server-go/internal/collection"
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/lobby"
	"github.com/pokewilds/pokewilds-server-go/internal/server"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

const tackleID = 33

func testData() *dex.TemplateRepository {
	power := 35
	accuracy := 100
	moves := dex.NewMoveRepositoryFromData(map[int]dex.Move{
		tackleID: {
			ID: tackleID, Name: "Tackle", Power: &power, Accuracy: &accuracy,
			PP: 35, Type: dex.TypeNormal, Category: dex.CategoryPhysical,
		},
	}, nil)
	return dex.NewTemplateRepositoryFromData([]dex.SpeciesTemplate{
		{
			ID:             1,
			Name:           "Rattata",
			Types:          []dex.PokemonType{dex.TypeNormal},
			BaseStats:      stats.StatSet{HP: 30, Attack: 56, Defense: 35, SpecialAttack: 25, SpecialDefense: 35, Speed: 72},
			BaseExperience: 51,
			GrowthRate:     dex.GrowthMedium,
		},
	}, moves)
}

type testServer struct {
	http  *httptest.Server
	store *collection.MemoryStore
	world *lobby.Lobby
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	templates := testData()

	store := collection.NewMemoryStore(templates)
	hub := lobby.NewHub(lobby.HubOptions{}, logger)
	world := lobby.New("overworld", hub, logger)
	battles := battle.NewManager(store, world, templates, battle.NewRand(), logger)
	gateway := server.NewGateway(hub, world, battles, logger)

	ts := httptest.NewServer(gateway.Handler())
	t.Cleanup(ts.Close)
	return &testServer{http: ts, store: store, world: world}
}

func (s *testServer) dial(t *testing.T, playerID, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.http.URL, "http") + "/ws?player_id=" + playerID + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (s *testServer) seedParty(playerID string) {
	s.store.SetParty(playerID, []collection.PokemonRecord{{
		ID:         playerID + "-starter",
		TemplateID: 1,
		Name:       "Rattata",
		Level:      10,
		MaxExp:     100000,
		CurrentHP:  35,
		Nature:     stats.NatureHardy,
		Moves:      []collection.MoveSlot{{ID: tackleID, PPRemaining: 35}},
	}})
}

func send(t *testing.T, conn *websocket.Conn, message map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(message))
}

// waitFor reads messages until one with the given type arrives. Any
// other message types on the way are discarded.
func waitFor(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)

		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message arrived in time", msgType)
	return nil
}

func TestWildBattleOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	s.seedParty("p1")
	s.world.AddMonster(lobby.WildMonster{
		InstanceID: "wild-1",
		TemplateID: 1,
		Name:       "Rattata",
		Level:      3,
		Stats:      stats.StatSet{HP: 16, Attack: 8, Defense: 7, SpecialAttack: 6, SpecialDefense: 7, Speed: 9},
		Nature:     stats.NatureHardy,
		Moves:      []lobby.MonsterMove{{ID: tackleID, PPRemaining: 35}},
		CurrentHP:  16,
	})

	conn := s.dial(t, "p1", "Red")

	send(t, conn, map[string]any{"type": "engage_monster", "instance_id": "wild-1"})

	start := waitFor(t, conn, "wild_battle_start")
	battleID, ok := start["battle_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, battleID)
	waitFor(t, conn, "request_action")

	send(t, conn, map[string]any{
		"type":      "battle_action",
		"battle_id": battleID,
		"action":    map[string]any{"action_type": "run"},
	})

	update := waitFor(t, conn, "turn_update")
	events, ok := update["events"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, events)

	end := waitFor(t, conn, "battle_end")
	assert.Equal(t, "player_ran", end["outcome"])
	assert.Equal(t, battleID, end["battle_id"])

	// The fled-from monster is free for the next encounter.
	monster, ok := s.world.Monster("wild-1")
	require.True(t, ok)
	assert.False(t, monster.InCombat)
}

func TestPvPBattleOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	s.seedParty("p1")
	s.seedParty("p2")

	conn1 := s.dial(t, "p1", "Red")
	conn2 := s.dial(t, "p2", "Blue")

	send(t, conn1, map[string]any{"type": "challenge_player", "opponent_id": "p2"})

	start1 := waitFor(t, conn1, "pvp_battle_start")
	start2 := waitFor(t, conn2, "pvp_battle_start")
	assert.Equal(t, "Blue", start1["opponent_name"])
	assert.Equal(t, "Red", start2["opponent_name"])
	battleID := start1["battle_id"]
	require.Equal(t, battleID, start2["battle_id"])
	waitFor(t, conn1, "request_action")
	waitFor(t, conn2, "request_action")

	send(t, conn1, map[string]any{
		"type":      "battle_action",
		"battle_id": battleID,
		"action":    map[string]any{"action_type": "run"},
	})
	send(t, conn2, map[string]any{
		"type":      "battle_action",
		"battle_id": battleID,
		"action":    map[string]any{"action_type": "use_move", "move_index": 0},
	})

	end1 := waitFor(t, conn1, "battle_end")
	end2 := waitFor(t, conn2, "battle_end")
	assert.Equal(t, "surrender", end1["outcome"])
	assert.Equal(t, "opponent_surrendered", end2["outcome"])
	assert.Equal(t, "surrender", end2["reason"])
}

func TestGatewayRejectsBadMessages(t *testing.T) {
	s := newTestServer(t)
	s.seedParty("p1")

	conn := s.dial(t, "p1", "Red")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	errMsg := waitFor(t, conn, "battle_error")
	assert.Equal(t, "malformed message", errMsg["message"])

	send(t, conn, map[string]any{"type": "engage_monster"})
	errMsg = waitFor(t, conn, "battle_error")
	assert.Equal(t, "instance_id is required", errMsg["message"])

	send(t, conn, map[string]any{"type": "teleport"})
	errMsg = waitFor(t, conn, "battle_error")
	assert.Contains(t, errMsg["message"], "unknown message type")
}
