package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"solo-trivia/internal/app"
	"solo-trivia/internal/config"
	"solo-trivia/internal/infra/file"
	"solo-trivia/internal/infra/memory"
	pginfra "solo-trivia/internal/infra/postgres"
	redisinfra "solo-trivia/internal/infra/redis"
	sqliteinfra "solo-trivia/internal/infra/sqlite"
	"solo-trivia/internal/store"
)

// backends holds the storage wired from config. Close releases whatever
// was opened.
type backends struct {
	kv        store.KV
	questions app.QuestionRepository
	sessions  app.SessionRepository
	closers   []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks, in order of preference:
//   - questions: Postgres, then the question file, then the built-in samples;
//     cached in Redis when configured, in memory otherwise.
//   - state: Postgres, then Redis, then SQLite, then memory.
//   - sessions: Redis-marked when Redis is configured.
func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
	}

	loader := questionLoader(cfg, pool)
	questionsTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		b.questions = redisinfra.NewQuestionRepository(redisClient, loader, questionsTTL)
		b.sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		b.questions = memory.NewQuestionRepository(loader, questionsTTL)
		b.sessions = memory.NewSessionStore()
	}

	stateTTL := config.TTLDuration(cfg.Game.StateTTL, 0)
	switch {
	case pool != nil:
		b.kv = pginfra.NewKVStore(pool)
		logger.Info("game state in postgres")
	case redisClient != nil:
		b.kv = redisinfra.NewKVStore(redisClient, stateTTL)
		logger.Info("game state in redis", zap.String("addr", cfg.Redis.Addr))
	case cfg.SQLite.Path != "":
		kv, err := sqliteinfra.Open(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = kv.Close() })
		b.kv = kv
		logger.Info("game state in sqlite", zap.String("path", cfg.SQLite.Path))
	default:
		b.kv = memory.NewKVStore()
		logger.Warn("game state in memory; it is lost on exit")
	}
	return b, nil
}

func questionLoader(cfg config.Config, pool *pgxpool.Pool) memory.QuestionLoader {
	switch {
	case pool != nil:
		return pginfra.NewQuestionLoader(pool)
	case cfg.Questions.File != "":
		return file.NewQuestionLoader(cfg.Questions.File)
	default:
		return memory.NewStaticQuestionLoader(sampleQuestions())
	}
}

func defaultSetID(cfg config.Config) string {
	if cfg.Questions.SetID != "" {
		return cfg.Questions.SetID
	}
	return file.DefaultSetID
}

func serviceOptions(cfg config.Config) app.Options {
	return app.Options{
		KeyPrefix:      cfg.Game.KeyPrefix,
		ReentrantFinal: cfg.Game.ReentrantFinal,
		WriteTimeout:   config.TTLDuration(cfg.Game.WriteTimeout, 5*time.Second),
	}
}
