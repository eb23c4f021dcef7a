package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lingo-battle-service/internal/domain"
)

// PoolLoader fetches a full question pool from the backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, level string) ([]domain.Question, error)
}

// QuestionCache keeps per-level question pools in Redis as JSON and samples
// from them in-process, so matchmaking never waits on a Postgres scan.
// Pools are stored as: SET battle:questions:{level} {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader PoolLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SampleQuestions draws a random sample from the cached level pool,
// falling back to the unfiltered pool when the level has too few.
func (c *QuestionCache) SampleQuestions(ctx context.Context, level string, count int) ([]domain.Question, error) {
	pool, err := c.pool(ctx, level)
	if err != nil || len(pool) < count {
		fallback, ferr := c.pool(ctx, "")
		if ferr == nil && len(fallback) > len(pool) {
			pool, err = fallback, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return c.sample(pool, count), nil
}

func (c *QuestionCache) pool(ctx context.Context, level string) ([]domain.Question, error) {
	key := c.key(level)

	if pool, ok := c.cached(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if pool, ok := c.cached(ctx, key); ok {
			return pool, nil
		}

		pool, err := c.loader.LoadPool(ctx, level)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(pool)
		if err != nil {
			return nil, err
		}
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (c *QuestionCache) sample(pool []domain.Question, count int) []domain.Question {
	out := append([]domain.Question(nil), pool...)

	c.mu.Lock()
	c.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	c.mu.Unlock()

	if count < len(out) {
		out = out[:count]
	}
	return out
}

func (c *QuestionCache) key(level string) string {
	if level == "" {
		return "battle:questions:any"
	}
	return "battle:questions:" + level
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(c.ttl) / 10

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
