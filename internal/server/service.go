package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/vargacet/pkg/chat"
	"github.com/jwebster45206/vargacet/pkg/game"
	"github.com/jwebster45206/vargacet/pkg/protocol"
)

// Service ties the room registry, hub and chat history together and
// dispatches player intents. Every intent is re-validated against the
// rules even though well-behaved clients pre-validate: the authority
// never trusts a client's legality check.
type Service struct {
	manager *Manager
	hub     *Hub
	chat    *chat.History
	logger  *slog.Logger
}

// NewService builds the game service.
func NewService(manager *Manager, hub *Hub, history *chat.History, logger *slog.Logger) *Service {
	return &Service{
		manager: manager,
		hub:     hub,
		chat:    history,
		logger:  logger,
	}
}

// Manager exposes the room registry for the HTTP surface.
func (s *Service) Manager() *Manager {
	return s.manager
}

// HandleConnection runs a player's websocket session: seat the player,
// stream snapshots, dispatch intents until the socket dies. Joining an
// unknown game id creates the lobby. A full room is refused with close
// code 4000, a finished game with 4001.
func (s *Service) HandleConnection(ctx context.Context, ws *websocket.Conn, gameID uuid.UUID, playerID string) {
	room, err := s.manager.EnsureRoom(ctx, gameID)
	if err != nil {
		s.logger.Error("Failed to open room", "game_id", gameID, "error", err)
		_ = ws.Close()
		return
	}

	room.mu.Lock()
	gs := room.State
	if gs.Status == game.StatusGameOver {
		room.mu.Unlock()
		s.refuse(ws, protocol.CloseGameEnded, "game already ended")
		return
	}
	if _, seated := gs.Players[playerID]; !seated && !gs.AddPlayer(playerID) {
		room.mu.Unlock()
		s.refuse(ws, protocol.CloseRoomFull, "game is full")
		return
	}
	gs.SetConnected(playerID, true)
	s.manager.Persist(ctx, gs)
	c := s.hub.Register(gameID, playerID, ws)
	s.broadcastState(gameID, room, nil, false)
	room.mu.Unlock()

	s.backfillChat(gameID, playerID)

	defer func() {
		s.hub.Unregister(gameID, playerID, c)
		room.mu.Lock()
		gs := room.State
		gs.SetConnected(playerID, false)
		// A player who leaves the lobby without ever naming themselves
		// gives the seat back, so the game stays joinable by others.
		if gs.Status == game.StatusLobby {
			if p, ok := gs.Players[playerID]; ok && p.Name == "" {
				gs.RemovePlayer(playerID)
			}
		}
		s.manager.Persist(ctx, gs)
		s.broadcastState(gameID, room, nil, false)
		room.mu.Unlock()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			s.logger.Debug("Read ended", "game_id", gameID, "player_id", playerID, "error", err)
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed messages are dropped, never fatal to the session.
			s.logger.Warn("Dropping unparseable message", "player_id", playerID, "error", err)
			continue
		}
		s.dispatch(ctx, gameID, room, playerID, env)
	}
}

// dispatch routes one intent. Rule violations are answered with an error
// envelope to the sender; accepted intents mutate the room, persist, and
// broadcast a fresh snapshot to everyone.
func (s *Service) dispatch(ctx context.Context, gameID uuid.UUID, room *Room, playerID string, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeMoveHero:
		var req protocol.MoveHero
		if err := env.Decode(&req); err != nil {
			s.logger.Warn("Dropping bad move_hero payload", "player_id", playerID, "error", err)
			return
		}
		s.handleMove(ctx, gameID, room, playerID, req)

	case protocol.TypeUseAbility:
		var req protocol.UseAbility
		if err := env.Decode(&req); err != nil {
			s.logger.Warn("Dropping bad use_ability payload", "player_id", playerID, "error", err)
			return
		}
		s.handleAbility(ctx, gameID, room, playerID, req)

	case protocol.TypeEndTurn:
		s.handleEndTurn(ctx, gameID, room, playerID)

	case protocol.TypeUndoMove:
		s.handleUndo(ctx, gameID, room, playerID)

	case protocol.TypeUpdateName:
		var req protocol.UpdateName
		if err := env.Decode(&req); err != nil || req.Name == "" {
			s.sendError(gameID, playerID, "name is required")
			return
		}
		s.handleUpdateName(ctx, gameID, room, playerID, req.Name)

	case protocol.TypeStartGame:
		s.handleStartGame(ctx, gameID, room, playerID)

	case protocol.TypeChatMessage:
		var req protocol.ChatPayload
		if err := env.Decode(&req); err != nil {
			s.logger.Warn("Dropping bad chat payload", "player_id", playerID, "error", err)
			return
		}
		s.handleChat(gameID, room, playerID, req)

	default:
		s.logger.Warn("Dropping unknown message type", "type", env.Type, "player_id", playerID)
	}
}

func (s *Service) handleMove(ctx context.Context, gameID uuid.UUID, room *Room, playerID string, req protocol.MoveHero) {
	room.mu.Lock()
	defer room.mu.Unlock()
	gs := room.State
	var err error
	switch {
	case gs.CurrentTurn != playerID:
		err = game.ErrNotYourTurn
	default:
		err = gs.ApplyMove(req.HeroID, req.Position)
	}
	if err != nil {
		s.sendError(gameID, playerID, err.Error())
		return
	}
	s.manager.Persist(ctx, gs)
	s.broadcastState(gameID, room, nil, false)
}

func (s *Service) handleAbility(ctx context.Context, gameID uuid.UUID, room *Room, playerID string, req protocol.UseAbility) {
	room.mu.Lock()
	defer room.mu.Unlock()
	gs := room.State
	var result *game.AbilityResult
	var err error
	if gs.CurrentTurn != playerID {
		err = game.ErrNotYourTurn
	} else {
		result, err = gs.ApplyAbility(req.HeroID, req.AbilityID, req.TargetPosition)
	}
	if err != nil {
		s.sendError(gameID, playerID, err.Error())
		return
	}
	s.manager.Persist(ctx, gs)
	s.broadcastState(gameID, room, result.DeadHeroes, result.WinnerID != "")
	if result.WinnerID != "" {
		s.chat.Cleanup(gameID.String())
	}
}

func (s *Service) handleEndTurn(ctx context.Context, gameID uuid.UUID, room *Room, playerID string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := room.State.EndTurn(playerID); err != nil {
		s.sendError(gameID, playerID, err.Error())
		return
	}
	s.manager.Persist(ctx, room.State)
	s.broadcastState(gameID, room, nil, false)
}

func (s *Service) handleUndo(ctx context.Context, gameID uuid.UUID, room *Room, playerID string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	gs := room.State
	var err error
	if gs.Status == game.StatusInProgress && gs.CurrentTurn != playerID {
		err = game.ErrNotYourTurn
	} else {
		err = gs.UndoMove()
	}
	if err != nil {
		s.sendError(gameID, playerID, err.Error())
		return
	}
	s.manager.Persist(ctx, gs)
	s.broadcastState(gameID, room, nil, false)
}

func (s *Service) handleUpdateName(ctx context.Context, gameID uuid.UUID, room *Room, playerID, name string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.State.UpdatePlayerName(playerID, name) {
		s.sendError(gameID, playerID, "failed to update name")
		return
	}
	s.manager.Persist(ctx, room.State)
	s.broadcastState(gameID, room, nil, false)
}

func (s *Service) handleStartGame(ctx context.Context, gameID uuid.UUID, room *Room, playerID string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	gs := room.State
	var err error
	switch {
	case gs.Status != game.StatusLobby:
		err = game.ErrCannotStart
	case !gs.IsFull() || !gs.AllNamed():
		err = game.ErrCannotStart
	default:
		if err = s.manager.SetupBoard(gs); err == nil {
			err = gs.Start()
		}
	}
	if err != nil {
		s.logger.Warn("Could not start game", "game_id", gameID, "error", err)
		s.sendError(gameID, playerID, "could not start game")
		return
	}
	s.logger.Info("Game started", "game_id", gameID)
	s.manager.Persist(ctx, gs)
	s.broadcastState(gameID, room, nil, false)
}

// handleChat relays a chat line. The server stamps the time and the
// channel: anything other than global is pinned to this game's lobby.
func (s *Service) handleChat(gameID uuid.UUID, room *Room, playerID string, req protocol.ChatPayload) {
	if req.Content == "" {
		return
	}
	channel := chat.ChannelGlobal
	if req.Channel != chat.ChannelGlobal {
		channel = gameID.String()
	}

	room.mu.Lock()
	senderName := room.State.PlayerName(playerID)
	room.mu.Unlock()

	msg := chat.Message{
		SenderID:   playerID,
		SenderName: senderName,
		Content:    req.Content,
		Timestamp:  time.Now().UTC(),
		Channel:    channel,
	}
	s.chat.Add(msg)

	env, err := protocol.NewEnvelope(protocol.TypeChatMessage, protocol.ChatPayload{
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
		Channel:    msg.Channel,
	})
	if err != nil {
		s.logger.Error("Failed to build chat envelope", "error", err)
		return
	}
	if channel == chat.ChannelGlobal {
		s.hub.BroadcastAll(env)
		return
	}
	s.hub.Broadcast(gameID, env)
}

// backfillChat replays the retained lobby chat to a newly joined player.
func (s *Service) backfillChat(gameID uuid.UUID, playerID string) {
	for _, msg := range s.chat.Messages(gameID.String()) {
		env, err := protocol.NewEnvelope(protocol.TypeChatMessage, protocol.ChatPayload{
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Content:    msg.Content,
			Timestamp:  msg.Timestamp,
			Channel:    msg.Channel,
		})
		if err != nil {
			continue
		}
		s.hub.SendTo(gameID, playerID, env)
	}
}

// broadcastState clones the room state and fans the snapshot out to every
// player. Callers must hold room.mu: the clone and the hub enqueue happen
// in the same critical section as the mutation they report, so snapshots
// reach the hub in mutation order, the single ordered stream clients
// rely on.
func (s *Service) broadcastState(gameID uuid.UUID, room *Room, dead []*game.Hero, newlyOver bool) {
	snapshot, err := room.State.Clone()
	if err != nil {
		s.logger.Error("Failed to snapshot game", "game_id", gameID, "error", err)
		return
	}

	payload := protocol.GameStatePayload{GameState: *snapshot, DeadHeroes: dead}
	if newlyOver {
		payload.WinnerName = snapshot.PlayerName(snapshot.WinnerID)
	}
	env, err := protocol.NewEnvelope(protocol.TypeGameState, payload)
	if err != nil {
		s.logger.Error("Failed to build snapshot envelope", "game_id", gameID, "error", err)
		return
	}
	s.hub.Broadcast(gameID, env)
}

func (s *Service) sendError(gameID uuid.UUID, playerID, message string) {
	env, err := protocol.NewEnvelope(protocol.TypeError, protocol.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	s.hub.SendTo(gameID, playerID, env)
}

// refuse closes a just-upgraded socket with a terminal close code before
// the player is ever seated.
func (s *Service) refuse(ws *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = ws.Close()
}
