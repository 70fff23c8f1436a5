package ports

import (
	"context"
	"io"

	"github.com/bizdir/company-api/internal/core/domain"
)

// FileInput is an inbound file as received by the transport layer.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// CompanyFields holds the structured metadata of a company form. Nil pointers
// mean "not supplied" and leave the stored value unchanged on update.
type CompanyFields struct {
	Name        *string
	Description *string
	Industry    *string
	Phone       *string
	Address     *string
	Website     *string
	SocialLinks []string
	IsVerified  *bool
}

// CreateCompanyInput carries the creation form.
type CreateCompanyInput struct {
	Fields CompanyFields
	Logo   *FileInput
	Banner *FileInput
}

// UpdateCompanyInput carries the update form for one company.
type UpdateCompanyInput struct {
	CompanyID string
	Fields    CompanyFields
	Logo      *FileInput
	Banner    *FileInput
}

// ListCompaniesInput carries the paging query of the public listing.
type ListCompaniesInput struct {
	Page  int
	Limit int
}

// ListCompaniesResult is returned by List.
type ListCompaniesResult struct {
	Items      []*domain.Company
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CompanyService defines the company use cases. Every method except List
// requires the acting principal.
type CompanyService interface {
	Create(ctx context.Context, principal domain.Principal, input CreateCompanyInput) (*domain.Company, error)
	Update(ctx context.Context, principal domain.Principal, input UpdateCompanyInput) (*domain.Company, error)
	GetOwned(ctx context.Context, principal domain.Principal, companyID string) (*domain.Company, error)
	List(ctx context.Context, input ListCompaniesInput) (*ListCompaniesResult, error)
}
