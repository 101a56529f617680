package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/model"
)

// TopicCampaignActions carries participant actions waiting to be recorded.
const TopicCampaignActions = "campaign_actions"

const defaultMaxRetries = 3

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// ActionJob is the payload on TopicCampaignActions.
type ActionJob struct {
	Action model.ParticipantAction `json:"action"`
}

// InMemoryQueue fans each message out to the topic's subscribers, retrying
// failed handlers with a growing delay.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	inflight sync.WaitGroup

	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: defaultMaxRetries,
		Backoff:    500 * time.Millisecond,
		Logger:     logger,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		q.inflight.Add(1)
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	defer q.inflight.Done()

	for {
		err := handler(job.Payload)
		if err == nil {
			q.Logger.Debug("job processed", zap.String("topic", job.Topic), zap.Int("attempts", job.RetryCount+1))
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			q.Logger.Error("job permanently failed",
				zap.String("topic", job.Topic), zap.Int("attempts", job.RetryCount), zap.Error(err))
			return
		}
		q.Logger.Warn("job failed, retrying",
			zap.String("topic", job.Topic), zap.Int("attempt", job.RetryCount), zap.Int("max_retries", job.MaxRetries), zap.Error(err))

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Drain blocks until every published job has finished, including retries.
func (q *InMemoryQueue) Drain() {
	q.inflight.Wait()
}

// StartActionSubscriber registers process as the TopicCampaignActions handler.
// Malformed payloads are dropped without retry.
func StartActionSubscriber(q Queue, process func(ctx context.Context, job ActionJob) error, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return q.Subscribe(TopicCampaignActions, func(payload any) error {
		var job ActionJob
		switch p := payload.(type) {
		case ActionJob:
			job = p
		case *ActionJob:
			job = *p
		case []byte:
			if err := json.Unmarshal(p, &job); err != nil {
				logger.Warn("invalid action payload", zap.Error(err))
				return nil
			}
		default:
			logger.Warn("invalid action payload type", zap.String("type", fmt.Sprintf("%T", payload)))
			return nil
		}
		return process(context.Background(), job)
	})
}
