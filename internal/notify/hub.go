// Package notify is the in-memory fan-out layer for order lifecycle events.
// Delivery is best-effort: a subscriber that is not connected, or whose buffer
// is full, simply misses the event and must re-fetch authoritative state.
package notify

import (
	"log"
	"sync"
)

// EventType names the lifecycle events pushed to subscribers.
type EventType string

const (
	EventNewOrder       EventType = "newOrder"
	EventOrderCancelled EventType = "orderCancelled"
	EventOrderCompleted EventType = "orderCompleted"
)

// Event is one pushed notification. Payload carries the same confirmation
// shape returned by order creation.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// subscriberBuffer bounds how many undelivered events a connection may queue
// before further events are dropped for it.
const subscriberBuffer = 16

// Subscriber is one live connection's membership in a group. Membership is
// session-scoped: a dropped connection must resubscribe.
type Subscriber struct {
	ch     chan Event
	userID string
	staff  bool
}

// Events returns the channel the hub delivers on. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub maintains the staff group and one group per user, and fans events out to
// whoever is currently subscribed.
type Hub struct {
	mu    sync.RWMutex
	staff map[*Subscriber]struct{}
	users map[string]map[*Subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		staff: make(map[*Subscriber]struct{}),
		users: make(map[string]map[*Subscriber]struct{}),
	}
}

// SubscribeStaff joins the shared staff group.
func (h *Hub) SubscribeStaff() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberBuffer), staff: true}
	h.mu.Lock()
	h.staff[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// SubscribeUser joins the group for one authenticated user.
func (h *Hub) SubscribeUser(userID string) *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberBuffer), userID: userID}
	h.mu.Lock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Subscriber]struct{})
	}
	h.users[userID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber from its group and closes its channel.
// Safe to call once per subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if sub.staff {
		if _, ok := h.staff[sub]; !ok {
			h.mu.Unlock()
			return
		}
		delete(h.staff, sub)
	} else {
		group, ok := h.users[sub.userID]
		if !ok {
			h.mu.Unlock()
			return
		}
		if _, ok := group[sub]; !ok {
			h.mu.Unlock()
			return
		}
		delete(group, sub)
		if len(group) == 0 {
			delete(h.users, sub.userID)
		}
	}
	h.mu.Unlock()
	close(sub.ch)
}

// PublishStaff delivers an event to every current staff subscriber.
func (h *Hub) PublishStaff(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.staff {
		h.send(sub, event)
	}
}

// PublishUser delivers an event to every connection of one user.
func (h *Hub) PublishUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.users[userID] {
		h.send(sub, event)
	}
}

// send never blocks; a full buffer drops the event for that subscriber.
func (h *Hub) send(sub *Subscriber, event Event) {
	select {
	case sub.ch <- event:
	default:
		log.Printf("notify: dropping %s event for slow subscriber", event.Type)
	}
}
