package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/bizdir/company-api/internal/core/domain"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port           string `env:"PORT,           default=8080"`
	Env            string `env:"ENV,            default=development"`
	LogLevel       string `env:"LOG_LEVEL,      default=info"`
	StorageBackend string `env:"STORAGE_BACKEND, default=mongo"`
	CORSOrigins    string `env:"CORS_ORIGINS,   default=*"`
	BodyLimit      string `env:"BODY_LIMIT,     default=12M"`

	JWT    JWTConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	S3     S3Config
	Quota  QuotaConfig
	Upload UploadConfig
	Cache  CacheConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL,    default=168h"`
	Scheme string        `env:"JWT_SCHEME, default=Bearer"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=company_directory"`
}

type RedisConfig struct {
	Enabled       bool          `env:"REDIS_ENABLED,   default=true"`
	Addr          string        `env:"REDIS_ADDR,      default=localhost:6379"`
	DB            int           `env:"REDIS_DB,        default=0"`
	CreateLockTTL time.Duration `env:"CREATE_LOCK_TTL, default=30s"`
}

type S3Config struct {
	Bucket        string `env:"S3_BUCKET,          default=company-media"`
	Region        string `env:"S3_REGION,          default=us-east-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

type QuotaConfig struct {
	Free    int `env:"QUOTA_FREE,    default=2"`
	Premium int `env:"QUOTA_PREMIUM, default=4"`
}

type UploadConfig struct {
	LogoMaxBytes   int64    `env:"UPLOAD_LOGO_MAX_BYTES,   default=5242880"`
	BannerMaxBytes int64    `env:"UPLOAD_BANNER_MAX_BYTES, default=10485760"`
	Formats        []string `env:"UPLOAD_FORMATS,          default=jpg,jpeg,png,webp,avif"`
}

type CacheConfig struct {
	PrincipalTTL time.Duration `env:"PRINCIPAL_CACHE_TTL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Quota.Free <= 0 || c.Quota.Premium <= 0 {
		errs = append(errs, errors.New("QUOTA_FREE and QUOTA_PREMIUM must be positive"))
	}
	if c.Upload.LogoMaxBytes <= 0 || c.Upload.BannerMaxBytes <= 0 {
		errs = append(errs, errors.New("upload size limits must be positive"))
	}
	if len(c.Upload.Formats) == 0 {
		errs = append(errs, errors.New("UPLOAD_FORMATS must not be empty"))
	}
	switch c.StorageBackend {
	case BackendMongo, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not one of %s, %s", c.StorageBackend, BackendMongo, BackendMemory))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// QuotaPolicy returns the per-tier company limits.
func (c *Config) QuotaPolicy() domain.QuotaPolicy {
	return domain.QuotaPolicy{Free: c.Quota.Free, Premium: c.Quota.Premium}
}

// UploadPolicies returns the per-slot upload bounds.
func (c *Config) UploadPolicies() map[string]domain.UploadPolicy {
	policies := domain.DefaultUploadPolicies()

	formats := make([]string, 0, len(c.Upload.Formats))
	for _, f := range c.Upload.Formats {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}

	logo := policies[domain.SlotLogo]
	logo.MaxSizeBytes = c.Upload.LogoMaxBytes
	logo.AllowedFormats = formats
	policies[domain.SlotLogo] = logo

	banner := policies[domain.SlotBanner]
	banner.MaxSizeBytes = c.Upload.BannerMaxBytes
	banner.AllowedFormats = append([]string(nil), formats...)
	policies[domain.SlotBanner] = banner

	return policies
}

// CORSAllowOrigins splits CORS_ORIGINS on commas.
func (c *Config) CORSAllowOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
