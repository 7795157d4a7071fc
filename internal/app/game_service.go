package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"solo-trivia/internal/domain"
	"solo-trivia/internal/game"
	"solo-trivia/internal/store"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked).
type SessionRepository interface {
	GetOrCreate(gameID string, build func() *Session) *Session
	Get(gameID string) (*Session, bool)
	DeleteIfIdle(gameID string) bool
}

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, setID string) ([]domain.Question, error)
}

// Options tune how sessions are built.
type Options struct {
	// KeyPrefix namespaces persisted state keys.
	KeyPrefix string
	// ReentrantFinal keeps the legacy finale behavior, see game.WithReentrantFinal.
	ReentrantFinal bool
	// WriteTimeout bounds a single background state write.
	WriteTimeout time.Duration
}

// DefaultKeyPrefix namespaces state keys when none is configured.
const DefaultKeyPrefix = "trivia:solo"

// GameService contains the game use cases exposed to renderers.
type GameService struct {
	sessions  SessionRepository
	questions QuestionRepository
	kv        store.KV
	logger    *zap.Logger
	opts      Options
}

func NewGameService(sessions SessionRepository, questions QuestionRepository, kv store.KV, logger *zap.Logger, opts Options) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	return &GameService{
		sessions:  sessions,
		questions: questions,
		kv:        kv,
		logger:    logger,
		opts:      opts,
	}
}

// Open resumes the game stored under gameID, or starts it on the question
// set setID. playerName only applies to a game with no stored player.
func (s *GameService) Open(ctx context.Context, gameID, setID, playerName string) (domain.Snapshot, error) {
	if session, ok := s.sessions.Get(gameID); ok {
		return session.snapshot(), nil
	}

	questions, err := s.questions.GetQuestions(ctx, setID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	set := game.NewQuestionSet(questions)

	session := s.sessions.GetOrCreate(gameID, func() *Session {
		return s.newSession(ctx, gameID, set, playerName)
	})
	snap := session.snapshot()
	s.logger.Info("game session opened",
		zap.String("game_id", gameID),
		zap.String("set_id", setID),
		zap.Int("questions", set.Len()),
		zap.Int("index", snap.Index),
		zap.String("stage", string(snap.Stage)),
	)
	return snap, nil
}

func (s *GameService) newSession(ctx context.Context, gameID string, set game.QuestionSet, playerName string) *Session {
	keys := store.Keys{Prefix: s.opts.KeyPrefix, GameID: gameID}
	logger := s.logger.With(zap.String("game_id", gameID))

	state, results := store.Load(ctx, s.kv, keys, playerName, logger)
	writer := store.NewWriteBehind(s.kv, keys, logger, s.opts.WriteTimeout)
	machine := game.Restore(gameID, set, state, results,
		game.WithPersister(writer),
		game.WithReentrantFinal(s.opts.ReentrantFinal),
	)
	return NewSession(machine, writer)
}

// Snapshot returns the current view of a game.
func (s *GameService) Snapshot(_ context.Context, gameID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// Results returns the result ledger of a game.
func (s *GameService) Results(_ context.Context, gameID string) ([]domain.ResultRow, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.results(), nil
}

// Next advances one stage.
func (s *GameService) Next(ctx context.Context, gameID string) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionNext, func(m *game.Machine) error {
		return m.Next()
	})
}

// Previous steps back one stage.
func (s *GameService) Previous(ctx context.Context, gameID string) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionPrevious, func(m *game.Machine) error {
		return m.Previous()
	})
}

// ArmX2 spends the double points token on the current question.
func (s *GameService) ArmX2(ctx context.Context, gameID string) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionArmX2, func(m *game.Machine) error {
		return m.ArmX2()
	})
}

// SetWager stakes points on the final question.
func (s *GameService) SetWager(ctx context.Context, gameID string, amount int) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionSetWager, func(m *game.Machine) error {
		return m.SetWager(amount)
	})
}

// Award records the outcome of a non-final question and moves on.
func (s *GameService) Award(ctx context.Context, gameID string, outcome domain.Outcome) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionAward, func(m *game.Machine) error {
		if err := m.Award(outcome, 1); err != nil {
			return err
		}
		return m.Next()
	})
}

// ResolveFinal settles the wager and moves to the results.
func (s *GameService) ResolveFinal(ctx context.Context, gameID string, outcome domain.Outcome) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionResolveFinal, func(m *game.Machine) error {
		if err := m.ResolveFinal(outcome); err != nil {
			return err
		}
		return m.Next()
	})
}

// Reset starts the game over.
func (s *GameService) Reset(ctx context.Context, gameID string) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionReset, func(m *game.Machine) error {
		m.Reset()
		return nil
	})
}

// Rename changes the player's display name.
func (s *GameService) Rename(ctx context.Context, gameID, name string) (domain.Snapshot, error) {
	return s.apply(ctx, gameID, domain.ActionRename, func(m *game.Machine) error {
		m.Rename(name)
		return nil
	})
}

func (s *GameService) apply(_ context.Context, gameID string, action domain.Action, fn func(m *game.Machine) error) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	snap, err := session.apply(fn)
	if err != nil {
		s.logger.Debug("game action rejected",
			zap.String("game_id", gameID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return snap, err
	}
	s.logger.Debug("game action applied",
		zap.String("game_id", gameID),
		zap.String("action", string(action)),
		zap.Int("index", snap.Index),
		zap.String("stage", string(snap.Stage)),
		zap.Int("score", snap.Player.Score),
	)
	return snap, nil
}

// Subscribe returns a channel that receives snapshots of a game.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Release drops the session once no renderer is subscribed, writing any
// pending state first.
func (s *GameService) Release(_ context.Context, gameID string) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return
	}
	if !s.sessions.DeleteIfIdle(gameID) {
		return
	}
	if err := session.Close(); err != nil {
		s.logger.Warn("close game session", zap.String("game_id", gameID), zap.Error(err))
	}
	s.logger.Info("game session released", zap.String("game_id", gameID))
}
