package handler

import (
	"time"

	"github.com/bizdir/company-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Companies ---

// companyCreateForm is the validated view of the multipart creation form.
type companyCreateForm struct {
	Name        string   `validate:"required"`
	Description string   `validate:"required"`
	Industry    string   `validate:"required"`
	Phone       string   `validate:"omitempty,max=50"`
	Address     string   `validate:"omitempty,max=200"`
	Website     string   `validate:"omitempty,url"`
	SocialLinks []string `validate:"omitempty,dive,url"`
}

// companyUpdateForm mirrors companyCreateForm with every field but industry
// optional. Name and description may be left out but not sent empty.
type companyUpdateForm struct {
	Name        *string  `validate:"omitnil,min=1"`
	Description *string  `validate:"omitnil,min=1"`
	Industry    string   `validate:"required"`
	Phone       string   `validate:"omitempty,max=50"`
	Address     string   `validate:"omitempty,max=200"`
	Website     string   `validate:"omitempty,url"`
	SocialLinks []string `validate:"omitempty,dive,url"`
}

type companyResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Industry    string    `json:"industry"`
	LogoURL     *string   `json:"logoUrl"`
	BannerURL   *string   `json:"bannerUrl"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	Website     *string   `json:"website"`
	SocialLinks []string  `json:"socialLinks"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listCompaniesResponse struct {
	Data       []companyResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Mapping ---

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toCompanyResponse(c *domain.Company) companyResponse {
	links := c.SocialLinks
	if links == nil {
		links = []string{}
	}
	return companyResponse{
		ID:          c.ID,
		UserID:      c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Industry:    c.Industry,
		LogoURL:     optional(c.LogoURL),
		BannerURL:   optional(c.BannerURL),
		Phone:       optional(c.Phone),
		Address:     optional(c.Address),
		Website:     optional(c.Website),
		SocialLinks: links,
		IsVerified:  c.IsVerified,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}
