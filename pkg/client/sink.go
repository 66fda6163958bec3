package client

import "github.com/jwebster45206/vargacet/pkg/game"

// PresentationSink receives presentation-worthy events derived from
// authoritative snapshots: audio cues, toasts, and the like. It is an
// injected capability so the engine stays free of any process-wide
// presentation singleton and fully testable.
type PresentationSink interface {
	HeroDied(hero *game.Hero)
	TurnChanged(playerID string)
	GameOver(winnerID, winnerName string)
}

// NopSink discards all presentation events.
type NopSink struct{}

func (NopSink) HeroDied(*game.Hero)     {}
func (NopSink) TurnChanged(string)      {}
func (NopSink) GameOver(string, string) {}
