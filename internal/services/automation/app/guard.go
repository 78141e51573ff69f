package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingGuard keeps at most one automation run in flight per tournament.
// Acquire and Release are keyed by a per-run token so a late release from an
// expired run cannot free a newer holder.
type PendingGuard interface {
	Acquire(ctx context.Context, tournamentID int64, token string) (bool, error)
	Release(ctx context.Context, tournamentID int64, token string) error
}

// MemoryGuard is a PendingGuard for a single process.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[int64]string
}

// NewMemoryGuard returns an empty in-process guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[int64]string)}
}

// Acquire claims tournamentID for token unless another run holds it.
func (g *MemoryGuard) Acquire(ctx context.Context, tournamentID int64, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[tournamentID]; ok {
		return false, nil
	}
	g.held[tournamentID] = token
	return true, nil
}

// Release frees tournamentID when token still holds it.
func (g *MemoryGuard) Release(_ context.Context, tournamentID int64, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[tournamentID] == token {
		delete(g.held, tournamentID)
	}
	return nil
}

const defaultGuardPrefix = "tournament-archive:automation:pending:"

// releaseScript deletes the key only while it still stores the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a PendingGuard shared by every worker using the same Redis.
// Keys expire after ttl so a crashed worker cannot hold a tournament forever.
type RedisGuard struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisGuard builds a guard storing keys under prefix.
func NewRedisGuard(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisGuard {
	if prefix == "" {
		prefix = defaultGuardPrefix
	}
	return &RedisGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *RedisGuard) key(tournamentID int64) string {
	return g.prefix + strconv.FormatInt(tournamentID, 10)
}

// Acquire claims tournamentID with SET NX and the configured expiry.
func (g *RedisGuard) Acquire(ctx context.Context, tournamentID int64, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(tournamentID), token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire pending guard for tournament %d: %w", tournamentID, err)
	}
	return ok, nil
}

// Release frees tournamentID when token still holds it.
func (g *RedisGuard) Release(ctx context.Context, tournamentID int64, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.key(tournamentID)}, token).Err(); err != nil {
		return fmt.Errorf("release pending guard for tournament %d: %w", tournamentID, err)
	}
	return nil
}
