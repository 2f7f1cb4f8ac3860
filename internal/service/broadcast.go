package service

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/fleetpulse/telemetry/internal/domain"
	"github.com/fleetpulse/telemetry/internal/metrics"
)

// Session is one live subscriber connection
type Session interface {
	// ID identifies the session for registry bookkeeping and logs
	ID() string

	// Send writes one serialized reading to the subscriber
	Send(payload []byte) error

	// Closed reports whether the connection has already gone away
	Closed() bool
}

// BroadcastRegistry holds the live subscriber sessions and fans each
// enriched reading out to all of them. Register and Unregister are safe
// to call concurrently with Broadcast.
type BroadcastRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewBroadcastRegistry creates an empty registry
func NewBroadcastRegistry() *BroadcastRegistry {
	return &BroadcastRegistry{
		sessions: make(map[string]Session),
	}
}

// Register adds a subscriber session
func (r *BroadcastRegistry) Register(s Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	metrics.Subscribers.Inc()
	log.Printf("broadcast: session %s registered", s.ID())
}

// Unregister removes a subscriber session if present
func (r *BroadcastRegistry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		metrics.Subscribers.Dec()
		log.Printf("broadcast: session %s unregistered", id)
	}
}

// Count returns the number of registered sessions
func (r *BroadcastRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast serializes the reading once and sends it to every live
// session. Sessions already closed are pruned first. A send failure on
// one session is logged and does not affect the others.
func (r *BroadcastRegistry) Broadcast(data domain.VehicleTelemetry) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("broadcast: failed to serialize reading for vehicle %s: %v", data.VehicleID, err)
		return
	}

	targets := r.pruneAndSnapshot()
	if len(targets) == 0 {
		log.Printf("broadcast: no active sessions, dropping reading for vehicle %s", data.VehicleID)
		return
	}

	for _, s := range targets {
		if err := s.Send(payload); err != nil {
			log.Printf("broadcast: send to session %s failed: %v", s.ID(), err)
			metrics.BroadcastSendFailures.Inc()
		}
	}
	metrics.Broadcasts.Inc()
}

// pruneAndSnapshot drops closed sessions and returns the survivors so
// sends happen without holding the lock.
func (r *BroadcastRegistry) pruneAndSnapshot() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets := make([]Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if s.Closed() {
			delete(r.sessions, id)
			metrics.Subscribers.Dec()
			continue
		}
		targets = append(targets, s)
	}
	return targets
}
