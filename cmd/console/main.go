// Command console is a line-based test client: it joins a game over the
// websocket and turns typed commands into intents. Useful for poking at a
// running server without a real frontend.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jwebster45206/vargacet/pkg/client"
	"github.com/jwebster45206/vargacet/pkg/game"
	"github.com/jwebster45206/vargacet/pkg/protocol"
)

type consoleSink struct{}

func (consoleSink) HeroDied(h *game.Hero) {
	fmt.Printf("* %s died\n", h.ID)
}

func (consoleSink) TurnChanged(playerID string) {
	fmt.Printf("* turn: %s\n", playerID)
}

func (consoleSink) GameOver(winnerID, winnerName string) {
	if winnerName == "" {
		winnerName = winnerID
	}
	fmt.Printf("* game over, winner: %s\n", winnerName)
}

func main() {
	var (
		serverURL = flag.String("server", "ws://localhost:8080", "server base URL")
		gameID    = flag.String("game", "", "game id to join (required)")
		playerID  = flag.String("player", "", "player id (required)")
		name      = flag.String("name", "", "display name")
	)
	flag.Parse()

	if *gameID == "" || *playerID == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	engine := client.NewEngine(*playerID, consoleSink{}, logger)

	cm := client.NewConnectionManager(client.Config{
		URL:    fmt.Sprintf("%s/ws/game/%s/player/%s", *serverURL, *gameID, *playerID),
		Logger: logger,
		Handler: func(env protocol.Envelope) {
			handleMessage(engine, env)
		},
		OnStateChange: func(s client.State) {
			fmt.Printf("* connection: %s\n", s)
		},
		OnGiveUp: func(err error) {
			fmt.Printf("* gave up reconnecting: %v\n", err)
			os.Exit(1)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := cm.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cm.Close()

	if *name != "" {
		send(cm, mustEnvelope(protocol.TypeUpdateName, protocol.UpdateName{Name: *name}))
	}

	fmt.Println("commands: start | select <hero> | ability <id> | move <x> <y> | cast <x> <y> | undo | end | say <msg> | board | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !runCommand(cm, engine, scanner.Text()) {
			return
		}
	}
}

func handleMessage(engine *client.Engine, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeGameState:
		var p protocol.GameStatePayload
		if err := env.Decode(&p); err != nil {
			return
		}
		engine.ApplySnapshot(&p)
	case protocol.TypeChatMessage:
		var p protocol.ChatPayload
		if err := env.Decode(&p); err != nil {
			return
		}
		fmt.Printf("[%s] %s: %s\n", p.Channel, p.SenderName, p.Content)
	case protocol.TypeError:
		var p protocol.ErrorPayload
		if err := env.Decode(&p); err != nil {
			return
		}
		fmt.Printf("! %s\n", p.Message)
	}
}

// runCommand executes one typed line. Returns false to quit.
func runCommand(cm *client.ConnectionManager, engine *client.Engine, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false
	case "start":
		send(cm, mustEnvelope(protocol.TypeStartGame, struct{}{}))
	case "select":
		if len(fields) != 2 {
			fmt.Println("usage: select <hero_id>")
			return true
		}
		if err := engine.SelectHero(fields[1]); err != nil {
			fmt.Printf("! %v\n", err)
		}
	case "ability":
		if len(fields) != 2 {
			fmt.Println("usage: ability <ability_id>")
			return true
		}
		if err := engine.SelectAbility(fields[1]); err != nil {
			fmt.Printf("! %v\n", err)
		}
	case "move", "cast":
		p, ok := parseTarget(fields)
		if !ok {
			return true
		}
		var env protocol.Envelope
		var err error
		if fields[0] == "move" {
			env, err = engine.MoveIntent(p)
		} else {
			env, err = engine.AbilityIntent(p)
		}
		if err != nil {
			fmt.Printf("! %v\n", err)
			return true
		}
		send(cm, env)
	case "undo":
		env, err := engine.UndoIntent()
		if err != nil {
			fmt.Printf("! %v\n", err)
			return true
		}
		send(cm, env)
	case "end":
		env, err := engine.EndTurnIntent()
		if err != nil {
			fmt.Printf("! %v\n", err)
			return true
		}
		send(cm, env)
	case "say":
		msg := strings.TrimSpace(strings.TrimPrefix(line, "say"))
		if msg == "" {
			return true
		}
		send(cm, mustEnvelope(protocol.TypeChatMessage, protocol.ChatPayload{Content: msg}))
	case "board":
		printBoard(engine)
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return true
}

func parseTarget(fields []string) (game.Position, bool) {
	if len(fields) != 3 {
		fmt.Printf("usage: %s <x> <y>\n", fields[0])
		return game.Position{}, false
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil {
		fmt.Println("coordinates must be integers")
		return game.Position{}, false
	}
	return game.Position{X: x, Y: y}, true
}

func printBoard(engine *client.Engine) {
	gs := engine.Snapshot()
	if gs == nil {
		fmt.Println("no snapshot yet")
		return
	}
	fmt.Printf("status=%s turn=%s\n", gs.Status, gs.CurrentTurn)
	for _, playerID := range gs.TurnOrder {
		player := gs.Players[playerID]
		fmt.Printf("%s (%s):\n", player.Name, playerID)
		for _, h := range player.Heroes {
			fmt.Printf("  %s at %s hp=%d/%d move=%d action=%d mana=%d\n",
				h.ID, h.Position.Key(),
				h.HP.Current, h.HP.Max,
				h.Movement.Current, h.Action.Current, h.Mana.Current)
		}
	}
}

func send(cm *client.ConnectionManager, env protocol.Envelope) {
	if err := cm.Send(env); err != nil {
		fmt.Printf("! %v\n", err)
	}
}

func mustEnvelope(t string, payload any) protocol.Envelope {
	env, err := protocol.NewEnvelope(t, payload)
	if err != nil {
		panic(err)
	}
	return env
}
