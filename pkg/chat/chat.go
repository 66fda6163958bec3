// Package chat holds the chat relay model. Messages pass through the server
// untouched; the rules engine never reads them.
package chat

import (
	"sync"
	"time"
)

// ChannelGlobal is the cross-game chat channel. Every other channel name is
// a game id (lobby chat).
const ChannelGlobal = "global"

// HistoryLimit is the number of messages kept per channel.
const HistoryLimit = 100

// Message is a single chat line.
type Message struct {
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Channel    string    `json:"channel"`
}

// History keeps the most recent messages per channel so late joiners can
// backfill. Bounded to HistoryLimit entries per channel.
type History struct {
	mu       sync.Mutex
	channels map[string][]Message
}

// NewHistory returns an empty chat history.
func NewHistory() *History {
	return &History{channels: make(map[string][]Message)}
}

// Add appends a message to its channel, trimming the oldest entries beyond
// the limit.
func (h *History) Add(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.channels[msg.Channel], msg)
	if len(msgs) > HistoryLimit {
		msgs = msgs[len(msgs)-HistoryLimit:]
	}
	h.channels[msg.Channel] = msgs
}

// Messages returns a copy of the channel's retained messages, oldest first.
func (h *History) Messages(channel string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.channels[channel]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Cleanup drops a finished game's lobby channel.
func (h *History) Cleanup(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, channel)
}
