package messaging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"multi-tenant-booking/internal/consumer"
	"multi-tenant-booking/internal/metrics"
)

const (
	subjectPrefix = "bookings."
	backendNATS   = "nats"
)

// NatsRelay fans booking events out to every instance over core NATS subjects.
// Core NATS has no persistence, which matches the at-most-once contract.
type NatsRelay struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

func NewNatsRelay(url string) (*NatsRelay, error) {
	conn, err := nats.Connect(url,
		nats.Name("booking-notify"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(natsDisconnected),
		nats.ReconnectHandler(natsReconnected),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.RelayUp.WithLabelValues(backendNATS).Set(1)
	return &NatsRelay{conn: conn}, nil
}

func natsDisconnected(_ *nats.Conn, err error) {
	metrics.RelayUp.WithLabelValues(backendNATS).Set(0)
	if err != nil {
		log.Printf("[NATS] Disconnected: %v", err)
	}
}

func natsReconnected(_ *nats.Conn) {
	metrics.RelayUp.WithLabelValues(backendNATS).Set(1)
	log.Println("[NATS] Reconnected")
}

// Subject maps a dashboard topic onto a NATS subject.
func Subject(topic string) string {
	return subjectPrefix + topic
}

// TopicFromSubject is the inverse of Subject.
func TopicFromSubject(subject string) string {
	return strings.TrimPrefix(subject, subjectPrefix)
}

func (n *NatsRelay) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.conn.Publish(Subject(topic), payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}
	return nil
}

// Start forwards every booking subject into sink.
func (n *NatsRelay) Start(sink consumer.Sink) error {
	sub, err := n.conn.Subscribe(subjectPrefix+">", func(m *nats.Msg) {
		topic := TopicFromSubject(m.Subject)
		if err := sink.Publish(context.Background(), topic, m.Data); err != nil {
			log.Printf("[NATS] Deliver %s failed: %v", topic, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	n.sub = sub
	log.Printf("[NATS] Relay subscribed to %s>", subjectPrefix)
	return nil
}

func (n *NatsRelay) Close() error {
	if n.sub != nil {
		_ = n.sub.Unsubscribe()
	}
	return n.conn.Drain()
}
