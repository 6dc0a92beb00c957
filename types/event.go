package types

import "time"

const (
	TypeWebsocketStage = "stage"
	TypeWebsocketError = "error"
)

// DeckEvent reports a committed pipeline step or a failed run for one deck.
type DeckEvent struct {
	Type      string    `json:"type"`
	DeckID    uint      `json:"deck_id"`
	Stage     Stage     `json:"stage"`
	Processed bool      `json:"processed"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}
