package service

import (
	"context"
	"fmt"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// Guard enforces resource ownership and the per-tier creation quota.
//
// The quota check reads the current count without locking it; two concurrent
// creations by one owner can both pass. Callers that need the bound to be
// strict serialize creation with a ports.OwnerLocker.
type Guard struct {
	companies ports.CompanyCounter
	policy    domain.QuotaPolicy
}

func NewGuard(companies ports.CompanyCounter, policy domain.QuotaPolicy) *Guard {
	return &Guard{companies: companies, policy: policy}
}

// AssertOwns checks existence first and ownership second, so a missing
// company is domain.ErrCompanyNotFound and a foreign one domain.ErrForbidden.
func (g *Guard) AssertOwns(principal domain.Principal, company *domain.Company) error {
	if company == nil {
		return domain.ErrCompanyNotFound
	}
	if !company.OwnedBy(principal.ID) {
		return domain.ErrForbidden
	}
	return nil
}

// AssertUnderQuota returns *domain.QuotaExceededError unless the principal
// owns strictly fewer companies than its tier allows.
func (g *Guard) AssertUnderQuota(ctx context.Context, principal domain.Principal) error {
	count, err := g.companies.CountByOwner(ctx, principal.ID)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}

	tier := principal.Tier()
	limit := g.policy.Limit(tier)
	if count >= int64(limit) {
		return &domain.QuotaExceededError{Tier: tier, Limit: limit}
	}
	return nil
}
