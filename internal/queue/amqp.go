package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const retryHeader = "x-retry-count"

// AMQPQueue is the RabbitMQ-backed Queue. Payloads travel as JSON; subscribers
// receive the raw body as []byte.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool

	MaxRetries int
	Logger     *zap.Logger
}

func DialAMQP(url string, logger *zap.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	return &AMQPQueue{
		conn:       conn,
		ch:         ch,
		declared:   map[string]bool{},
		MaxRetries: defaultMaxRetries,
		Logger:     logger,
	}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return q.publishRaw(topic, body, 0)
}

func (q *AMQPQueue) publishRaw(topic string, body []byte, retryCount int) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{retryHeader: int32(retryCount)},
		Body:         body,
	})
}

// Subscribe consumes topic in a goroutine until the channel closes.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	if err := q.ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			handleDelivery(d, topic, handler, q.MaxRetries, q.publishRaw, q.Logger)
		}
		q.Logger.Info("consumer stopped", zap.String("topic", topic))
	}()
	return nil
}

// handleDelivery acks on success. On failure it republishes with a bumped retry
// header until maxRetries is reached, then drops the message.
func handleDelivery(
	d amqp.Delivery,
	topic string,
	handler func(payload any) error,
	maxRetries int,
	republish func(topic string, body []byte, retryCount int) error,
	logger *zap.Logger,
) {
	err := handler(d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	retryCount := retryCountOf(d.Headers)
	if retryCount >= maxRetries {
		logger.Error("message dropped after retries",
			zap.String("topic", topic), zap.Int("retries", retryCount), zap.Error(err))
		_ = d.Ack(false)
		return
	}

	if pubErr := republish(topic, d.Body, retryCount+1); pubErr != nil {
		logger.Warn("republish failed, requeueing", zap.String("topic", topic), zap.Error(pubErr))
		_ = d.Nack(false, true)
		return
	}
	logger.Warn("message failed, retry scheduled",
		zap.String("topic", topic), zap.Int("retry", retryCount+1), zap.Error(err))
	_ = d.Ack(false)
}

func retryCountOf(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var (
	_ Queue = (*InMemoryQueue)(nil)
	_ Queue = (*AMQPQueue)(nil)
)
