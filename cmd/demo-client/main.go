package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
)

var (
	addr       = flag.String("addr", "localhost:8080", "server address")
	playerID   = flag.String("player", "demo-player", "player id")
	playerName = flag.String("name", "Demo", "player display name")
	instanceID = flag.String("monster", "", "wild monster instance id to engage")
	moveIndex  = flag.Int("move", 0, "move slot to use every turn")
)

type clientMessage struct {
	Type       string  `json:"type"`
	InstanceID string  `json:"instance_id,omitempty"`
	BattleID   string  `json:"battle_id,omitempty"`
	Action     *action `json:"action,omitempty"`
}

type action struct {
	Type      string `json:"action_type"`
	MoveIndex int    `json:"move_index,omitempty"`
}

type serverMessage struct {
	Type     string `json:"type"`
	BattleID string `json:"battle_id"`
	Outcome  string `json:"outcome"`
	Message  string `json:"message"`
	Events   []struct {
		Message string `json:"message"`
	} `json:"events"`
	Active struct {
		Name      string `json:"name"`
		CurrentHP int    `json:"current_hp"`
		MaxHP     int    `json:"max_hp"`
	} `json:"active_pokemon"`
	Wild struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	} `json:"wild_pokemon"`
}

func main() {
	flag.Parse()
	if *instanceID == "" {
		log.Fatal("pass -monster with the instance id of a spawned wild monster")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws",
		RawQuery: url.Values{"player_id": {*playerID}, "name": {*playerName}}.Encode(),
	}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		battleID := ""
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v", err)
				return
			}

			var msg serverMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("Error unmarshaling message: %v", err)
				continue
			}

			switch msg.Type {
			case "wild_battle_start":
				battleID = msg.BattleID
				log.Printf("A wild %s (level %d) appeared! Sent out %s (%d/%d HP)",
					msg.Wild.Name, msg.Wild.Level,
					msg.Active.Name, msg.Active.CurrentHP, msg.Active.MaxHP)

			case "request_action":
				log.Printf("Using move slot %d", *moveIndex)
				err := conn.WriteJSON(clientMessage{
					Type:     "battle_action",
					BattleID: battleID,
					Action:   &action{Type: "use_move", MoveIndex: *moveIndex},
				})
				if err != nil {
					log.Printf("Write error: %v", err)
					return
				}

			case "turn_update":
				for _, event := range msg.Events {
					if event.Message != "" {
						log.Printf("  %s", event.Message)
					}
				}

			case "battle_end":
				log.Printf("Battle over: %s", msg.Outcome)
				return

			case "battle_error":
				log.Printf("Server error: %s", msg.Message)
				return
			}
		}
	}()

	engage := clientMessage{Type: "engage_monster", InstanceID: *instanceID}
	if err := conn.WriteJSON(engage); err != nil {
		log.Fatalf("Failed to engage monster: %v", err)
	}

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		<-done
	}
}
