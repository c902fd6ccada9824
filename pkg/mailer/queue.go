package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// QueueConfig configures the dispatch worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type queuedMessage struct {
	msg     Message
	attempt int
}

// Queue delivers messages asynchronously through a Service, retrying failed
// sends. Delivery is at-least-once: a retried message may be sent twice if
// the first attempt succeeded after its response was lost.
type Queue struct {
	transport Service

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	messages chan queuedMessage
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
}

// NewQueue builds a dispatch queue in front of the given transport.
func NewQueue(transport Service, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		transport:  transport,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		messages:   make(chan queuedMessage, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("mail queue started", "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("mail queue stopped")
}

// Enqueue schedules a message for delivery.
func (q *Queue) Enqueue(msg Message) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("mail queue not started")
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("mail queue stopped: %w", ctx.Err())
	case q.messages <- queuedMessage{msg: msg}:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case item := <-q.messages:
			if err := q.transport.Send(q.ctx, item.msg); err != nil {
				q.handleFailure(item, err)
			}
		}
	}
}

func (q *Queue) handleFailure(item queuedMessage, err error) {
	item.attempt++
	if item.attempt > q.maxRetries {
		q.logger.Sugar().Errorw("email exceeded delivery retries",
			"subject", item.msg.Subject, "attempts", item.attempt, "error", err)
		return
	}
	q.logger.Sugar().Warnw("email delivery failed, retrying",
		"subject", item.msg.Subject, "attempt", item.attempt, "error", err)

	go func(m queuedMessage) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			select {
			case <-q.ctx.Done():
			case q.messages <- m:
			}
		}
	}(item)
}
