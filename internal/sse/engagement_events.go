package sse

import (
	"context"
	"sync"

	"ms-engagement/internal/models"
)

const clientBuffer = 16

// EngagementEmitter fans engagement events out to the live stream clients of each event
type EngagementEmitter struct {
	// key: eventID, value: client channels
	clients map[string][]chan models.EngagementEvent
	mu      sync.RWMutex
}

func NewEngagementEmitter() *EngagementEmitter {
	return &EngagementEmitter{
		clients: make(map[string][]chan models.EngagementEvent),
	}
}

// Subscribe registers a client for eventID until ctx is done; the channel is closed then.
func (e *EngagementEmitter) Subscribe(ctx context.Context, eventID string) <-chan models.EngagementEvent {
	clientChan := make(chan models.EngagementEvent, clientBuffer)

	e.mu.Lock()
	e.clients[eventID] = append(e.clients[eventID], clientChan)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts without blocking; a client whose buffer is full misses the event.
func (e *EngagementEmitter) Emit(ev models.EngagementEvent) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	delivered := 0
	for _, clientChan := range e.clients[ev.EventID] {
		select {
		case clientChan <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// PublishEngagement lets services publish straight to live clients when Kafka is off.
func (e *EngagementEmitter) PublishEngagement(_ context.Context, ev models.EngagementEvent) error {
	e.Emit(ev)
	return nil
}

func (e *EngagementEmitter) removeClient(eventID string, clientChan chan models.EngagementEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[eventID]) == 0 {
		delete(e.clients, eventID)
	}
}

// ClientCount returns the number of clients currently subscribed to an event
func (e *EngagementEmitter) ClientCount(eventID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[eventID])
}
