// internal/consumer/consumer.go
package consumer

import (
	"context"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// Sink receives relayed events; notify.Hub satisfies it.
type Sink interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Consumer relays booking events from the exchange into the local hub.
type Consumer struct {
	QueueName   string
	Channel     *amqp.Channel
	StopChan    chan struct{}
	DoneChan    chan struct{}
	Sink        Sink
	ConsumerTag string
}

// StartConsumer binds a private, auto-deleted queue to every routing key on
// exchange and forwards deliveries to sink until Stop is called. Deliveries
// are auto-acked: an event is handed over at most once.
func StartConsumer(conn *amqp.Connection, exchange string, sink Sink) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare relay queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "#", exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to bind %s to %s: %w", q.Name, exchange, err)
	}

	consumerTag := fmt.Sprintf("relay-%s", q.Name)
	msgs, err := ch.Consume(
		q.Name,
		consumerTag,
		true, // autoAck
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to start consuming %s: %w", q.Name, err)
	}

	c := &Consumer{
		QueueName:   q.Name,
		Channel:     ch,
		StopChan:    make(chan struct{}),
		DoneChan:    make(chan struct{}),
		Sink:        sink,
		ConsumerTag: consumerTag,
	}

	go c.consumeLoop(msgs)

	log.Printf("[Rabbit] Relay consumer started on %s", q.Name)
	return c, nil
}

// consumeLoop processes messages until StopChan is closed
func (c *Consumer) consumeLoop(msgs <-chan amqp.Delivery) {
	defer func() {
		close(c.DoneChan)
	}()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[Rabbit] Relay %s: delivery channel closed", c.QueueName)
				return
			}
			if err := c.Sink.Publish(context.Background(), msg.RoutingKey, msg.Body); err != nil {
				log.Printf("[Rabbit] Relay %s: deliver %s failed: %v", c.QueueName, msg.RoutingKey, err)
			}

		case <-c.StopChan:
			_ = c.Channel.Cancel(c.ConsumerTag, false)
			return
		}
	}
}

// Stop signals the consumer to stop and waits for cleanup
func (c *Consumer) Stop() {
	close(c.StopChan)
	<-c.DoneChan
	_ = c.Channel.Close()
	log.Printf("[Rabbit] Relay consumer %s stopped", c.QueueName)
}
