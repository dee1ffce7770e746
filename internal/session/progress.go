package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one progress update published while a session records or
// processes.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Broker fans progress events out to subscribers. Publishing never blocks;
// events are dropped for subscribers that fall behind.
type Broker struct {
	mu   sync.Mutex
	subs map[string]chan Event
	last Event
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]chan Event)}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (b *Broker) Subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to all subscribers.
func (b *Broker) Publish(stage, message string) {
	ev := Event{Stage: stage, Message: message, At: time.Now()}

	b.mu.Lock()
	b.last = ev
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// Last returns the most recently published event.
func (b *Broker) Last() Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
