// internal/messaging/rabbit.go
package messaging

import (
	"context"
	"fmt"
	"log"

	"github.com/streadway/amqp"

	"multi-tenant-booking/internal/metrics"
)

const backendRabbit = "rabbitmq"

type RabbitClient struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	URL      string
	Exchange string
}

func NewRabbitClient(url, exchange string) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	r := &RabbitClient{
		conn:     conn,
		channel:  ch,
		URL:      url,
		Exchange: exchange,
	}
	if err := r.DeclareExchange(); err != nil {
		r.Close()
		return nil, err
	}

	metrics.RelayUp.WithLabelValues(backendRabbit).Set(1)
	go watchClose(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return r, nil
}

// watchClose waits for the connection to go away. The client never redials:
// once the broker drops it, publishes fail and the relay consumer stops until
// the process is restarted.
func watchClose(closed <-chan *amqp.Error) {
	amqpErr, ok := <-closed
	metrics.RelayUp.WithLabelValues(backendRabbit).Set(0)
	if ok && amqpErr != nil {
		log.Printf("[Rabbit] Connection lost, relay down until restart: %v", amqpErr)
		return
	}
	log.Println("[Rabbit] Connection closed")
}

func (r *RabbitClient) GetConnection() *amqp.Connection {
	return r.conn
}

// DeclareExchange creates the topic exchange booking events are routed through.
func (r *RabbitClient) DeclareExchange() error {
	err := r.channel.ExchangeDeclare(
		r.Exchange,
		amqp.ExchangeTopic,
		true, false, false, false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", r.Exchange, err)
	}
	log.Printf("[Rabbit] Exchange %s declared", r.Exchange)
	return nil
}

// Publish routes payload to every instance bound to the exchange, using the
// dashboard topic as routing key. Messages are transient: subscribers that are
// not connected when it is routed never see it.
func (r *RabbitClient) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.channel.Publish(
		r.Exchange,
		topic, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", r.Exchange, topic, err)
	}
	return nil
}

// Close cleans up connection and channel
func (r *RabbitClient) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	if err := r.conn.Close(); err != nil {
		return err
	}
	return nil
}
