// Package cache decorates the user repository with a ristretto in-process
// cache so that every authenticated request does not hit the database for
// the principal lookup.
package cache

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// UserCache caches FindByID hits for a short TTL. Misses and errors are never
// cached, so a newly registered user resolves immediately; role or billing
// changes become visible once the entry expires.
type UserCache struct {
	next ports.UserRepository
	c    *ristretto.Cache[string, *domain.User]
	ttl  time.Duration
}

var _ ports.UserRepository = (*UserCache)(nil)

// NewUserCache wraps next. maxEntries bounds the number of cached users.
func NewUserCache(next ports.UserRepository, maxEntries int64, ttl time.Duration) (*UserCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *domain.User]{
		NumCounters: maxEntries * 10, // ~10x expected items
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &UserCache{next: next, c: c, ttl: ttl}, nil
}

func (u *UserCache) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := u.c.Get(id); ok {
		return clone(user), nil
	}
	user, err := u.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.c.SetWithTTL(id, clone(user), 1, u.ttl)
	return user, nil
}

func (u *UserCache) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.next.FindByEmail(ctx, email)
}

func (u *UserCache) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return u.next.Create(ctx, user)
}

// Invalidate drops a cached user.
func (u *UserCache) Invalidate(id string) {
	u.c.Del(id)
}

// Wait blocks until pending writes are applied. Tests use it to observe
// ristretto's asynchronous sets.
func (u *UserCache) Wait() {
	u.c.Wait()
}

// Close shuts down the cache and releases resources.
func (u *UserCache) Close() {
	u.c.Close()
}

func clone(user *domain.User) *domain.User {
	c := *user
	c.Roles = slices.Clone(user.Roles)
	return &c
}
