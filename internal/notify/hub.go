// Package notify is the in-process publish/subscribe registry that pushes
// booking events to live dashboard connections.
package notify

import (
	"context"
	"log"
	"sync"

	"multi-tenant-booking/internal/metrics"
	"multi-tenant-booking/internal/model"
)

// GlobalTopic is the single topic used in single-tenant mode.
const GlobalTopic = "bookings"

// TopicFor returns the dashboard topic for a tenant, or GlobalTopic when c is nil.
func TopicFor(c *model.Client) string {
	if c == nil {
		return GlobalTopic
	}
	return "tenant." + c.ID.String()
}

// Subscription receives every payload published on its topic after it was
// registered, until Close is called.
type Subscription struct {
	C <-chan []byte

	topic string
	ch    chan []byte
	hub   *Hub
	once  sync.Once
}

func (s *Subscription) Topic() string {
	return s.topic
}

// Close unregisters the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

type Hub struct {
	buffer int

	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
}

// NewHub creates a hub whose subscribers buffer up to buffer undelivered events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		buffer: buffer,
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan []byte, h.buffer)
	s := &Subscription{C: ch, topic: topic, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	metrics.DashboardSubscribers.WithLabelValues(topic).Inc()
	return s
}

// Publish hands payload to every subscriber currently registered on topic.
// Emission happens under the hub lock so subscribers see publishes in the
// order they were issued. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(_ context.Context, topic string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.topics[topic] {
		select {
		case s.ch <- payload:
		default:
			metrics.NotificationsDropped.WithLabelValues(topic).Inc()
			log.Printf("[Notify] Subscriber on %s is slow, event dropped", topic)
		}
	}
	return nil
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[s.topic]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, s.topic)
	}
	close(s.ch)
	metrics.DashboardSubscribers.WithLabelValues(s.topic).Dec()
}
