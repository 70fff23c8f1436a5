package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/pkg/password"
	"github.com/bizdir/company-api/internal/pkg/token"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	seq     int
	findErr error // if set, both finders return this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("user_%d", r.seq)
	}
	r.byID[clone.ID] = clone
	return cloneUser(clone), nil
}

type stubCompanyRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Company
	seq       int
	countErr  error
	createErr error
	creates   int
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{byID: make(map[string]*domain.Company)}
}

func (r *stubCompanyRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *stubCompanyRepo) Create(_ context.Context, c *domain.Company) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	r.creates++
	clone := *c
	clone.ID = fmt.Sprintf("company_%d", r.seq)
	// Keep creation order observable for the newest-first listing.
	clone.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	clone := *c
	return &clone, nil
}

// Update mirrors the real repository: owner and creation time are kept.
func (r *stubCompanyRepo) Update(_ context.Context, c *domain.Company) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[c.ID]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	clone := *c
	clone.OwnerID = stored.OwnerID
	clone.CreatedAt = stored.CreatedAt
	r.byID[c.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCompanyRepo) List(_ context.Context, f ports.ListCompaniesFilter) ([]*domain.Company, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Company, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := min(start+f.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

// ---------------------------------------------------------------------------
// Stub media store
// ---------------------------------------------------------------------------

type stubMediaStore struct {
	mu         sync.Mutex
	seq        int
	uploads    []ports.MediaObject
	destroyed  []string
	uploadErr  map[string]error // keyed by folder
	destroyErr error
}

func newStubMediaStore() *stubMediaStore {
	return &stubMediaStore{uploadErr: make(map[string]error)}
}

func (m *stubMediaStore) Upload(ctx context.Context, obj ports.MediaObject) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Done() != nil {
		return "", errors.New("upload context is cancellable")
	}
	if err := m.uploadErr[obj.Folder]; err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, obj.Body); err != nil {
		return "", err
	}
	m.seq++
	m.uploads = append(m.uploads, obj)
	return fmt.Sprintf("https://media.test/%s/asset%d.%s", obj.Folder, m.seq, obj.Format), nil
}

func (m *stubMediaStore) Destroy(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, assetID)
	return m.destroyErr
}

func (m *stubMediaStore) AssetID(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) < 2 || !strings.Contains(parts[len(parts)-1], ".") {
		return "", fmt.Errorf("cannot derive asset id from %q", url)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

func (m *stubMediaStore) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

func (m *stubMediaStore) destroyedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroyed...)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testSecret = "test-secret"

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

// cheapHasher keeps argon2 fast enough for unit tests.
func cheapHasher() *password.Hasher {
	return password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func fileOf(contentType string, size int) *ports.FileInput {
	data := bytes.Repeat([]byte{0xAB}, size)
	return &ports.FileInput{
		Filename:    "upload",
		ContentType: contentType,
		Size:        int64(size),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func testPolicies() map[string]domain.UploadPolicy {
	return map[string]domain.UploadPolicy{
		domain.SlotLogo:   {Folder: "company-logos", MaxSizeBytes: 100, AllowedFormats: []string{"png", "jpeg"}},
		domain.SlotBanner: {Folder: "company-banners", MaxSizeBytes: 200, AllowedFormats: []string{"png", "webp"}},
	}
}

func ptr[T any](v T) *T { return &v }

func freePrincipal(id string) domain.Principal {
	return domain.Principal{ID: id, Name: id, Email: id + "@x.com"}
}

func premiumPrincipal(id string) domain.Principal {
	p := freePrincipal(id)
	p.Roles = []string{domain.RolePremium}
	return p
}

func validFields() ports.CompanyFields {
	return ports.CompanyFields{
		Name:        ptr("Acme"),
		Description: ptr("Anvils and rockets"),
		Industry:    ptr("manufacturing"),
	}
}

type companyFixture struct {
	repo  *stubCompanyRepo
	media *stubMediaStore
	svc   *CompanyService
}

func newCompanyFixture(locker ports.OwnerLocker) *companyFixture {
	repo := newStubCompanyRepo()
	media := newStubMediaStore()
	svc := NewCompanyService(
		repo,
		NewGuard(repo, domain.DefaultQuotaPolicy),
		NewMediaService(media, testPolicies(), zerolog.Nop()),
		locker,
		zerolog.Nop(),
	)
	return &companyFixture{repo: repo, media: media, svc: svc}
}
