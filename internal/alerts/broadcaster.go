package alerts

import (
	"sync"
	"sync/atomic"

	"github.com/kavachhq/kavach-backend/internal/models"
)

// Broadcaster fans freshly generated alerts out to live stream subscribers
// (the SSE endpoint). Delivery is best-effort: slow subscribers are skipped
// rather than blocking evaluation.
type Broadcaster struct {
	subscribers map[uint64]chan models.Alert
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.Alert),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan models.Alert) {
	id := b.nextID.Add(1)
	ch := make(chan models.Alert, 16) // a single evaluation emits at most three

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(alert models.Alert) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- alert:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
