package types

import "time"

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type StartupListItem struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Website       *string   `json:"website"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	NumberOfDecks int       `json:"number_of_decks"`
	LatestDeckID  *uint     `json:"latest_deck_id"`
}

type DeckListItem struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Processed bool      `json:"processed"`
	Stage     Stage     `json:"stage"`
}

type StartupDetail struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Website     *string        `json:"website"`
	Description *string        `json:"description"`
	Decks       []DeckListItem `json:"decks"`
}

type DeckDetail struct {
	ID        uint       `json:"id"`
	StartupID uint       `json:"startup_id"`
	CreatedAt time.Time  `json:"created_at"`
	Processed bool       `json:"processed"`
	Stage     Stage      `json:"stage"`
	LastError *string    `json:"last_error"`
	Summary   Summary    `json:"summary"`
	Claims    []Claim    `json:"claims"`
	Questions []Question `json:"questions"`
}
