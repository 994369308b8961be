package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is the wire format consumed by the chat front-end's delivery
// worker.
type Message struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// AMQPNotifier publishes notifications to a durable queue.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue

	// OperatorChatID receives detailed failure reports.
	OperatorChatID int64
}

func NewAMQPNotifier(url, queueName string, operatorChatID int64) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: channel, queue: q, OperatorChatID: operatorChatID}, nil
}

func (n *AMQPNotifier) publish(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	err = n.channel.PublishWithContext(
		ctx,
		"",           // exchange
		n.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) NotifyUser(ctx context.Context, chatID int64, text string) error {
	return n.publish(ctx, Message{ChatID: chatID, Text: text})
}

func (n *AMQPNotifier) NotifyOperator(ctx context.Context, text string) error {
	return n.publish(ctx, Message{ChatID: n.OperatorChatID, Text: text})
}

func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return err
	}
	return n.conn.Close()
}

var _ Notifier = (*AMQPNotifier)(nil)
