// Package events is the in-process store notification bus. Components publish
// mutations here and subscribers (the WebSocket hub, tests) observe them.
package events

import (
	"context"
	"sync"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/observability"
)

// Topics published by the services.
const (
	PostCreated        = "post.created"
	PostReaction       = "post.reaction"
	CreationGenerated  = "creation.generated"
	LogoSaved          = "logo.saved"
	LogoDeleted        = "logo.deleted"
	PromptCreated      = "prompt.created"
	PromptUpdated      = "prompt.updated"
	ChallengeCreated   = "challenge.created"
	ChallengeUpdated   = "challenge.updated"
	PreferencesUpdated = "preferences.updated"
	ProjectSaved       = "project.saved"
	ProjectDeleted     = "project.deleted"
)

const subscriptionBuffer = 64

// Event is a store mutation. UserID scopes the event to one user; zero means broadcast.
type Event struct {
	Type    string    `json:"type"`
	UserID  uint      `json:"user_id,omitempty"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Relay forwards events to other instances. Events published through a relay
// come back via Deliver on every instance, including this one.
type Relay interface {
	Publish(ctx context.Context, e Event) error
}

// Publisher is the write side of the broker used by services.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Broker fans events out to subscriptions without blocking publishers.
type Broker struct {
	mu    sync.RWMutex
	subs  map[*Subscription]struct{}
	relay Relay
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[*Subscription]struct{})}
}

// SetRelay routes future publishes through r.
func (b *Broker) SetRelay(r Relay) {
	b.mu.Lock()
	b.relay = r
	b.mu.Unlock()
}

// Publish stamps and distributes e. When the relay fails the event is still delivered locally.
func (b *Broker) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	observability.EventsPublished.WithLabelValues(e.Type).Inc()

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()

	if relay != nil {
		err := relay.Publish(ctx, e)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "event relay failed, delivering locally",
			"type", e.Type, "error", err.Error())
	}
	b.Deliver(e)
}

// Deliver hands e to every matching local subscription.
func (b *Broker) Deliver(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if !s.matches(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			observability.EventsDropped.WithLabelValues(e.Type).Inc()
		}
	}
}

// Subscribe returns a subscription to every event whose type is in topics
// (all events when topics is empty).
func (b *Broker) Subscribe(topics ...string) *Subscription {
	return b.subscribe(0, false, topics)
}

// SubscribeUser is Subscribe limited to broadcast events and events for userID.
func (b *Broker) SubscribeUser(userID uint, topics ...string) *Subscription {
	return b.subscribe(userID, true, topics)
}

func (b *Broker) subscribe(userID uint, scoped bool, topics []string) *Subscription {
	s := &Subscription{
		broker: b,
		ch:     make(chan Event, subscriptionBuffer),
		userID: userID,
		scoped: scoped,
	}
	if len(topics) > 0 {
		s.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			s.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Subscription is a buffered event stream. Events are dropped when the buffer is full.
type Subscription struct {
	broker *Broker
	ch     chan Event
	topics map[string]struct{}
	userID uint
	scoped bool
	once   sync.Once
}

// C returns the event channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s)
		s.broker.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) matches(e Event) bool {
	if s.topics != nil {
		if _, ok := s.topics[e.Type]; !ok {
			return false
		}
	}
	if s.scoped && e.UserID != 0 && e.UserID != s.userID {
		return false
	}
	return true
}
