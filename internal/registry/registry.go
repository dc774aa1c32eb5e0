package registry

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

const clientEventBuffer = 100

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is the addressable endpoint for one live connection. Events is
// drained by the connection's single writer goroutine, which preserves
// per-connection delivery order.
type Client struct {
	ConnID string
	Events chan Event
	Done   chan struct{}
}

// Registry maps connection ids to live endpoints for one server instance.
// Room membership is never cached here; it is always re-derived from the
// session store.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func New() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

func (r *Registry) Register(connID string) *Client {
	client := &Client{
		ConnID: connID,
		Events: make(chan Event, clientEventBuffer),
		Done:   make(chan struct{}),
	}

	r.mu.Lock()
	if old, ok := r.clients[connID]; ok {
		close(old.Done)
	}
	r.clients[connID] = client
	count := len(r.clients)
	r.mu.Unlock()

	log.Info().
		Str("connId", connID).
		Int("clientCount", count).
		Msg("connection registered")

	return client
}

func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[connID]
	if !ok {
		return
	}
	delete(r.clients, connID)
	close(client.Done)

	log.Info().
		Str("connId", connID).
		Int("clientCount", len(r.clients)).
		Msg("connection unregistered")
}

// Resolve reports whether connID currently has a live endpoint.
func (r *Registry) Resolve(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[connID]
	return ok
}

// Send queues an event for connID. A false return means the connection is
// not currently registered; callers treat that as "recipient offline", not
// as an error. A full buffer drops the event with a warning.
func (r *Registry) Send(connID string, eventType string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("eventType", eventType).Msg("failed to marshal event payload")
		return false
	}

	r.mu.RLock()
	client, ok := r.clients[connID]
	r.mu.RUnlock()

	if !ok {
		return false
	}

	select {
	case client.Events <- Event{Type: eventType, Data: data}:
		return true
	default:
		log.Warn().
			Str("connId", connID).
			Str("eventType", eventType).
			Msg("client event buffer full, dropping event")
		return true
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		close(client.Done)
	}
	r.clients = make(map[string]*Client)
}
