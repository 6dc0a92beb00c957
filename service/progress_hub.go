package service

import (
	"sync"

	"github.com/tieubaoca/pitchdeck-be/types"
)

const subscriberBuffer = 16

// ProgressHub fans deck events out to in-process subscribers. Publish never
// blocks; a subscriber that falls behind loses events rather than stalling
// the pipeline.
type ProgressHub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uint]map[int]chan types.DeckEvent
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subs: make(map[uint]map[int]chan types.DeckEvent),
	}
}

// Subscribe returns a channel of events for deckID and a function that
// removes the subscription and closes the channel.
func (h *ProgressHub) Subscribe(deckID uint) (<-chan types.DeckEvent, func()) {
	ch := make(chan types.DeckEvent, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[deckID] == nil {
		h.subs[deckID] = make(map[int]chan types.DeckEvent)
	}
	h.subs[deckID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[deckID], id)
			if len(h.subs[deckID]) == 0 {
				delete(h.subs, deckID)
			}
			close(ch)
		})
	}
}

func (h *ProgressHub) Publish(event types.DeckEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[event.DeckID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports how many listeners deckID currently has.
func (h *ProgressHub) Subscribers(deckID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[deckID])
}
