package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"ms-engagement/internal/logger"
)

const pollInterval = 20 * time.Millisecond

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock serialises toggles of the same (user, event) pair across service instances.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
	Wait   time.Duration
	Logger *logger.Logger
}

func NewLock(client *redis.Client, ttl, wait time.Duration, log *logger.Logger) *Lock {
	return &Lock{
		Client: client,
		TTL:    ttl,
		Wait:   wait,
		Logger: log,
	}
}

func Key(userID, eventID string) string {
	return fmt.Sprintf("like_toggle:%s:%s", userID, eventID)
}

// TryAcquire makes a single SET NX attempt.
func (l *Lock) TryAcquire(ctx context.Context, userID, eventID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, Key(userID, eventID), token, l.TTL).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Acquire polls until the lock is taken, Wait elapses or ctx is done. ok is false
// when the lock is still held by someone else.
func (l *Lock) Acquire(ctx context.Context, userID, eventID string) (string, bool, error) {
	deadline := time.Now().Add(l.Wait)
	for {
		token, ok, err := l.TryAcquire(ctx, userID, eventID)
		if err != nil || ok {
			return token, ok, err
		}
		if time.Now().After(deadline) {
			l.Logger.Warn("REDIS", fmt.Sprintf("Lock %s still held after %s", Key(userID, eventID), l.Wait))
			return "", false, nil
		}

		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Release is a no-op when the lock expired or was taken over by another token.
func (l *Lock) Release(ctx context.Context, userID, eventID, token string) error {
	if token == "" {
		return nil
	}
	err := releaseScript.Run(ctx, l.Client, []string{Key(userID, eventID)}, token).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
