package cardcache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"psenrich/internal/models"
)

// Cache is a read cache for cmdlet cards in front of the cards table.
// Misses and backend errors both read through to storage.
type Cache interface {
	Get(ctx context.Context, name string) (*models.CmdletCard, bool)
	Set(ctx context.Context, card *models.CmdletCard)
	Invalidate(ctx context.Context, name string)
}

func cardKey(name string) string {
	return "cmdlet:card:" + strings.ToLower(strings.TrimSpace(name))
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisCache) Get(ctx context.Context, name string) (*models.CmdletCard, bool) {
	data, err := c.client.Get(ctx, cardKey(name)).Bytes()
	if err != nil {
		return nil, false
	}
	var card models.CmdletCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, false
	}
	return &card, true
}

func (c *redisCache) Set(ctx context.Context, card *models.CmdletCard) {
	data, err := json.Marshal(card)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cardKey(card.Name), data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, name string) {
	_ = c.client.Del(ctx, cardKey(name)).Err()
}

type memoryEntry struct {
	card    *models.CmdletCard
	expires time.Time
}

type memoryCache struct {
	mu     sync.Mutex
	cards  map[string]memoryEntry
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		cards:  make(map[string]memoryEntry),
		ttl:    ttl,
		nextGC: time.Now().Add(ttl),
	}
}

func (c *memoryCache) Get(_ context.Context, name string) (*models.CmdletCard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cards[cardKey(name)]
	if !ok || entry.expires.Before(time.Now()) {
		return nil, false
	}
	return entry.card, true
}

func (c *memoryCache) Set(_ context.Context, card *models.CmdletCard) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cards[cardKey(card.Name)] = memoryEntry{card: card, expires: now.Add(c.ttl)}
	if now.After(c.nextGC) {
		for key, entry := range c.cards {
			if entry.expires.Before(now) {
				delete(c.cards, key)
			}
		}
		c.nextGC = now.Add(c.ttl)
	}
}

func (c *memoryCache) Invalidate(_ context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cards, cardKey(name))
}

// New builds a Redis-backed cache and falls back to in-memory when Redis is
// unreachable; the returned error reports the fallback without being fatal.
func New(addr, pass string, db int, ttl time.Duration) (Cache, error) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if addr == "" {
		return newMemoryCache(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryCache(ttl), err
	}

	return &redisCache{client: client, ttl: ttl}, nil
}
