package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock re-acquired by another request is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OwnerLock serializes company creation per owner.
// Key format: company:create-lock:<owner_id>
type OwnerLock struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

var _ ports.OwnerLocker = (*OwnerLock)(nil)

// NewOwnerLock creates an OwnerLock wrapping the given Redis client. The TTL
// bounds how long a crashed holder can block its owner.
func NewOwnerLock(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *OwnerLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &OwnerLock{client: client, ttl: ttl, logger: logger}
}

// Acquire takes the lock or returns domain.ErrCreationInProgress when another
// creation for the same owner holds it.
func (l *OwnerLock) Acquire(ctx context.Context, ownerID string) (func(context.Context), error) {
	key := lockKey(ownerID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire creation lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrCreationInProgress
	}

	return func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release creation lock, it will expire")
		}
	}, nil
}

func lockKey(ownerID string) string {
	return fmt.Sprintf("company:create-lock:%s", ownerID)
}
