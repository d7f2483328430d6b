package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/battle"
	"github.com/pokewilds/pokewilds-server-go/internal/lobby"
)

// Client message types.
const (
	msgEngageMonster   = "engage_monster"
	msgChallengePlayer = "challenge_player"
	msgBattleAction    = "battle_action"
)

// clientMessage is the envelope every client payload arrives in.
type clientMessage struct {
	Type       string         `json:"type"`
	InstanceID string         `json:"instance_id,omitempty"`
	OpponentID string         `json:"opponent_id,omitempty"`
	BattleID   uuid.UUID      `json:"battle_id,omitempty"`
	Action     *battle.Action `json:"action,omitempty"`
}

// Gateway is the WebSocket front door: it upgrades connections,
// registers players in the world and routes their messages to the
// battle manager.
type Gateway struct {
	logger  *zap.Logger
	hub     *lobby.Hub
	world   *lobby.Lobby
	battles *battle.Manager
}

// NewGateway wires the transport to the world and battle manager.
func NewGateway(hub *lobby.Hub, world *lobby.Lobby, battles *battle.Manager, logger *zap.Logger) *Gateway {
	return &Gateway{logger: logger, hub: hub, world: world, battles: battles}
}

// Handler returns the HTTP mux serving the WebSocket endpoint and a
// health check.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	username := strings.TrimSpace(r.URL.Query().Get("name"))
	if playerID == "" {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}
	if username == "" {
		username = playerID
	}

	conn, err := lobby.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed",
			zap.String("player_id", playerID), zap.Error(err))
		return
	}

	read := g.hub.Attach(playerID, conn)
	g.world.AddPlayer(playerID, username)
	g.logger.Info("player connected", zap.String("player_id", playerID))

	defer func() {
		g.hub.Detach(playerID, conn)
		g.world.RemovePlayer(playerID)
		g.battles.HandleDisconnect(context.Background(), playerID)
		g.logger.Info("player disconnected", zap.String("player_id", playerID))
	}()

	ctx := r.Context()
	for {
		data, err := read()
		if err != nil {
			return
		}
		g.dispatch(ctx, playerID, data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, playerID string, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		g.sendError(ctx, playerID, "malformed message")
		return
	}

	switch msg.Type {
	case msgEngageMonster:
		if msg.InstanceID == "" {
			g.sendError(ctx, playerID, "instance_id is required")
			return
		}
		if _, err := g.battles.StartWildBattle(ctx, playerID, msg.InstanceID); err != nil {
			g.logger.Debug("wild battle rejected",
				zap.String("player_id", playerID), zap.Error(err))
			g.sendError(ctx, playerID, err.Error())
		}
	case msgChallengePlayer:
		if msg.OpponentID == "" {
			g.sendError(ctx, playerID, "opponent_id is required")
			return
		}
		if _, err := g.battles.StartPvPBattle(ctx, playerID, msg.OpponentID); err != nil {
			g.logger.Debug("pvp battle rejected",
				zap.String("player_id", playerID), zap.Error(err))
			g.sendError(ctx, playerID, err.Error())
		}
	case msgBattleAction:
		if msg.Action == nil {
			g.sendError(ctx, playerID, "action is required")
			return
		}
		if err := g.battles.HandlePlayerAction(ctx, msg.BattleID, playerID, *msg.Action); err != nil {
			g.logger.Debug("battle action rejected",
				zap.String("player_id", playerID),
				zap.String("battle_id", msg.BattleID.String()),
				zap.Error(err))
			g.sendError(ctx, playerID, err.Error())
		}
	default:
		g.sendError(ctx, playerID, "unknown message type "+msg.Type)
	}
}

func (g *Gateway) sendError(ctx context.Context, playerID, message string) {
	if err := g.hub.Send(ctx, playerID, battle.BattleErrorMessage{
		Type:    battle.MsgBattleError,
		Message: message,
	}); err != nil {
		g.logger.Debug("failed to deliver error message",
			zap.String("player_id", playerID), zap.Error(err))
	}
}
