package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/company-api/internal/core/domain"
)

type countingRepo struct {
	users map[string]*domain.User
	calls int
}

func (r *countingRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *countingRepo) FindByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *countingRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.users[u.ID] = u
	return u, nil
}

func newCountingRepo() *countingRepo {
	return &countingRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "a@x.com", Roles: []string{"premium"}},
	}}
}

func TestUserCache_HitsSkipRepository(t *testing.T) {
	repo := newCountingRepo()
	c, err := NewUserCache(repo, 100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	c.Wait()

	got, err := c.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, 1, repo.calls)

	// Callers get a copy; mutating it does not poison the cache.
	got.Roles[0] = "tampered"
	again, _ := c.FindByID(context.Background(), "u1")
	assert.Equal(t, []string{"premium"}, again.Roles)
}

func TestUserCache_MissesAreNotCached(t *testing.T) {
	repo := newCountingRepo()
	c, err := NewUserCache(repo, 100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.FindByID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	c.Wait()

	repo.users["ghost"] = &domain.User{ID: "ghost"}
	got, err := c.FindByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", got.ID)
	assert.Equal(t, 2, repo.calls)
}

func TestUserCache_Invalidate(t *testing.T) {
	repo := newCountingRepo()
	c, err := NewUserCache(repo, 100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, _ = c.FindByID(context.Background(), "u1")
	c.Wait()
	c.Invalidate("u1")
	_, _ = c.FindByID(context.Background(), "u1")
	assert.Equal(t, 2, repo.calls)
}
