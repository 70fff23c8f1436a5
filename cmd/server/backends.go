package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/infrastructure/cache"
	mongostore "github.com/bizdir/company-api/internal/infrastructure/db/mongo"
	redisstore "github.com/bizdir/company-api/internal/infrastructure/db/redis"
	"github.com/bizdir/company-api/internal/infrastructure/http/handlers"
	"github.com/bizdir/company-api/internal/infrastructure/memory"
	s3store "github.com/bizdir/company-api/internal/infrastructure/storage/s3"
	"github.com/bizdir/company-api/internal/pkg/config"
	"github.com/bizdir/company-api/pkg/logger"
)

// backends are the storage adapters selected by STORAGE_BACKEND.
// principals is the repository the resolver reads on every request; on the
// mongo backend it is users behind the ristretto cache.
type backends struct {
	users      ports.UserRepository
	principals ports.UserRepository
	companies  ports.CompanyRepository
	media      ports.MediaStore
	lock       *redisstore.OwnerLock
	pingers    map[string]handlers.Pinger
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	log := logger.Component("bootstrap")

	var (
		b   *backends
		err error
	)
	switch cfg.StorageBackend {
	case config.BackendMemory:
		b = memoryBackends(log)
	default:
		b, err = mongoBackends(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.lock = redisstore.NewOwnerLock(rdb, cfg.Redis.CreateLockTTL, logger.Component("owner_lock"))
		b.pingers["redis"] = redisstore.NewPinger(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	return b, nil
}

func memoryBackends(log zerolog.Logger) *backends {
	log.Warn().Msg("using in-memory storage; data is lost on restart")
	users := memory.NewUserRepository()
	return &backends{
		users:      users,
		principals: users,
		companies:  memory.NewCompanyRepository(),
		media:      memory.NewMediaStore(),
		pingers:    map[string]handlers.Pinger{},
	}
}

func mongoBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{pingers: map[string]handlers.Pinger{}}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
	b.pingers["mongodb"] = mongostore.NewPinger(client)
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		b.close()
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	users := mongostore.NewUserRepository(db)
	b.users = users
	b.principals = users
	if cfg.Cache.PrincipalTTL > 0 {
		cached, err := cache.NewUserCache(users, 0, cfg.Cache.PrincipalTTL)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("principal cache: %w", err)
		}
		b.closers = append(b.closers, cached.Close)
		b.principals = cached
	}
	b.companies = mongostore.NewCompanyRepository(db)

	s3cfg := s3store.Config{
		Bucket:        cfg.S3.Bucket,
		Region:        cfg.S3.Region,
		Endpoint:      cfg.S3.Endpoint,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	}
	s3client, err := s3store.NewClient(ctx, s3cfg)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	mediaStore := s3store.NewMediaStore(s3client, s3cfg)
	b.media = mediaStore
	b.pingers["s3"] = mediaStore

	return b, nil
}
