package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

type CompanyRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Company
}

var _ ports.CompanyRepository = (*CompanyRepository)(nil)

func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{byID: make(map[string]*domain.Company)}
}

func cloneCompany(c *domain.Company) *domain.Company {
	out := *c
	out.SocialLinks = slices.Clone(c.SocialLinks)
	if out.SocialLinks == nil {
		out.SocialLinks = []string{}
	}
	return &out
}

func (r *CompanyRepository) Create(_ context.Context, c *domain.Company) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneCompany(c)
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	return cloneCompany(stored), nil
}

func (r *CompanyRepository) FindByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return cloneCompany(c), nil
}

func (r *CompanyRepository) Update(_ context.Context, c *domain.Company) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[c.ID]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	next := cloneCompany(c)
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	r.byID[c.ID] = next
	return cloneCompany(next), nil
}

func (r *CompanyRepository) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *CompanyRepository) List(_ context.Context, f ports.ListCompaniesFilter) ([]*domain.Company, int64, error) {
	r.mu.RLock()
	all := make([]*domain.Company, 0, len(r.byID))
	for _, c := range r.byID {
		all = append(all, cloneCompany(c))
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *domain.Company) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start < 0 || start >= len(all) {
		return []*domain.Company{}, total, nil
	}
	end := min(start+f.Limit, len(all))
	return all[start:end], total, nil
}
