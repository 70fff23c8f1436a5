package ports

import (
	"context"

	"github.com/bizdir/company-api/internal/core/domain"
)

// ListCompaniesFilter carries the paging parameters of the public listing.
type ListCompaniesFilter struct {
	Page  int // 1-based
	Limit int
}

// CompanyCounter counts the companies owned by a principal. It is the only
// thing the quota guard needs from persistence.
type CompanyCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	CompanyCounter

	Create(ctx context.Context, c *domain.Company) (*domain.Company, error)
	// FindByID returns domain.ErrCompanyNotFound when absent. It never filters
	// by owner so that absence and foreign ownership stay distinguishable.
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	// Update replaces the mutable fields of an existing company. OwnerID and
	// CreatedAt are never written.
	Update(ctx context.Context, c *domain.Company) (*domain.Company, error)
	// List returns a page of companies, newest first, and the total count.
	List(ctx context.Context, filter ListCompaniesFilter) ([]*domain.Company, int64, error)
}
