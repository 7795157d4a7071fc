package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"solo-trivia/internal/domain"
)

type pendingWrite struct {
	state   domain.GameState
	results []domain.ResultRow
}

// WriteBehind persists game state on a background goroutine. Persist never
// waits on storage; when writes fall behind only the latest state is kept.
// Failures are logged and dropped.
type WriteBehind struct {
	kv      KV
	keys    Keys
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *pendingWrite
	closed  bool

	wake  chan struct{}
	flush chan chan struct{}
	stop  chan struct{}
	done  chan struct{}
}

// NewWriteBehind starts the writer. Callers must Close it.
func NewWriteBehind(kv KV, keys Keys, logger *zap.Logger, timeout time.Duration) *WriteBehind {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &WriteBehind{
		kv:      kv,
		keys:    keys,
		logger:  logger,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Persist queues state for writing and returns immediately.
func (w *WriteBehind) Persist(state domain.GameState, results []domain.ResultRow) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &pendingWrite{state: state, results: results}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every state queued before the call has been written
// or ctx is done.
func (w *WriteBehind) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flush <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending state and stops the writer.
func (w *WriteBehind) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
	return nil
}

func (w *WriteBehind) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flush:
			w.drain()
			close(ack)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *WriteBehind) drain() {
	w.mu.Lock()
	next := w.pending
	w.pending = nil
	w.mu.Unlock()
	if next == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := Save(ctx, w.kv, w.keys, next.state, next.results); err != nil {
		w.logger.Warn("persist game state failed",
			zap.String("game_id", w.keys.GameID),
			zap.Error(err),
		)
		return
	}
	w.logger.Debug("game state persisted",
		zap.String("game_id", w.keys.GameID),
		zap.Int("index", next.state.Index),
		zap.String("stage", string(next.state.Stage)),
	)
}
