package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"solo-trivia/internal/domain"
)

// QuestionLoader fetches a question set from a backing store (file, database).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, setID string) ([]domain.Question, error)
}

// QuestionRepository caches question sets in Redis (hash per set) and falls
// back to a loader on cache miss.
// Questions are stored as: HSET trivia:questions:{setID} {position} {question JSON}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, setID string) ([]domain.Question, error) {
	key := r.questionsKey(setID)

	if questions, ok := r.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, setID)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]interface{}, len(questions))
		for i, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			fields[strconv.Itoa(i)] = raw
		}
		if len(fields) > 0 {
			pipe := r.client.TxPipeline()
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields)
			if ttl := r.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// fromCache treats any unreadable entry as a miss so the set is reloaded.
func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	entries, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	questions, err := buildSetFromCache(entries)
	if err != nil {
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) questionsKey(setID string) string {
	return "trivia:questions:" + setID
}

func buildSetFromCache(entries map[string]string) ([]domain.Question, error) {
	type positioned struct {
		pos int
		q   domain.Question
	}
	items := make([]positioned, 0, len(entries))
	for field, raw := range entries {
		pos, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, err
		}
		items = append(items, positioned{pos: pos, q: q})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	questions := make([]domain.Question, len(items))
	for i, item := range items {
		questions[i] = item.q
	}
	return questions, nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
