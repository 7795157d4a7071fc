package app

import (
	"io"
	"sync"

	"solo-trivia/internal/domain"
	"solo-trivia/internal/game"
)

// Session serialises access to one game's machine and fans snapshots out
// to subscribed renderers.
type Session struct {
	id          string
	mu          sync.Mutex
	machine     *game.Machine
	persister   io.Closer
	subscribers map[chan domain.Snapshot]struct{}
}

// NewSession is exported for infrastructure layers that need to seed
// sessions. persister may be nil; it is closed with the session.
func NewSession(machine *game.Machine, persister io.Closer) *Session {
	return &Session{
		id:          machine.GameID(),
		machine:     machine,
		persister:   persister,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the game ID.
func (s *Session) ID() string {
	return s.id
}

// apply runs fn under the session lock. Subscribers are notified only when
// fn succeeds; the returned snapshot is current either way.
func (s *Session) apply(fn func(m *game.Machine) error) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.machine); err != nil {
		return s.machine.Snapshot(), err
	}
	return s.broadcastLocked(), nil
}

func (s *Session) snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot()
}

func (s *Session) results() []domain.ResultRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Results()
}

// IsIdle reports whether no renderer is subscribed.
func (s *Session) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

// Close stops the session's persister after writing any pending state.
func (s *Session) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.machine.Snapshot()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Snapshot {
	snap := s.machine.Snapshot()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow renderer: drop its oldest snapshot, the newest supersedes it.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}
