package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// setupTestDB starts a MongoDB container and returns a database with indexes
// in place. Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *driver.Database {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping MongoDB integration tests")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("skipping: could not start MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, db, err := Connect(ctx, Config{URI: uri, Database: "company_directory_test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	require.NoError(t, EnsureIndexes(ctx, db))
	require.NoError(t, NewPinger(client).Ping(ctx))
	return db
}

func TestMongoRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		repo := NewUserRepository(db)
		now := time.Now().UTC().Truncate(time.Millisecond)

		created, err := repo.Create(ctx, &domain.User{
			Name: "Alice", Email: "a@x.com", PasswordHash: "hash",
			Roles: []string{domain.RolePremium}, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		_, err = repo.Create(ctx, &domain.User{Name: "Other", Email: "a@x.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, domain.ErrUserExists)

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash", byID.PasswordHash)
		assert.Equal(t, domain.TierPremium, byID.Principal().Tier())

		byEmail, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, "not-an-object-id")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = repo.FindByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("companies", func(t *testing.T) {
		repo := NewCompanyRepository(db)
		base := time.Now().UTC().Truncate(time.Millisecond)

		var ids []string
		for i, owner := range []string{"alice", "alice", "bob"} {
			c, err := repo.Create(ctx, &domain.Company{
				OwnerID: owner, Name: "Co", Description: "d", Industry: "i",
				CreatedAt: base.Add(time.Duration(i) * time.Second),
				UpdatedAt: base,
			})
			require.NoError(t, err)
			ids = append(ids, c.ID)
		}

		n, err := repo.CountByOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		got, err := repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "alice", got.OwnerID)

		_, err = repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

		got.Name = "Renamed"
		got.LogoURL = "https://cdn.test/company-logos/x.png"
		got.OwnerID = "mallory"
		updated, err := repo.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "alice", updated.OwnerID, "owner must not change")

		_, err = repo.Update(ctx, &domain.Company{ID: "missing"})
		assert.True(t, errors.Is(err, domain.ErrCompanyNotFound))

		page, total, err := repo.List(ctx, ports.ListCompaniesFilter{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 2)
		assert.Equal(t, ids[2], page[0].ID, "newest first")
	})
}
