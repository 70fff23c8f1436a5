package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/pkg/metrics"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	// maxListPage keeps (page-1)*limit far from integer overflow.
	maxListPage = 1_000_000
)

type CompanyService struct {
	repo   ports.CompanyRepository
	guard  *Guard
	media  *MediaService
	locker ports.OwnerLocker
	logger zerolog.Logger
}

var _ ports.CompanyService = (*CompanyService)(nil)

// NewCompanyService wires the company use cases. locker may be nil, in which
// case the quota check and the insert are not serialized per owner.
func NewCompanyService(repo ports.CompanyRepository, guard *Guard, media *MediaService, locker ports.OwnerLocker, logger zerolog.Logger) *CompanyService {
	return &CompanyService{repo: repo, guard: guard, media: media, locker: locker, logger: logger}
}

// Create persists a new company owned by principal. The quota is checked
// before any file leaves the process.
func (s *CompanyService) Create(ctx context.Context, principal domain.Principal, input ports.CreateCompanyInput) (*domain.Company, error) {
	if principal.ID == "" {
		return nil, domain.NewAuthError(domain.AuthInvalidPayload, nil)
	}
	f := input.Fields
	if blank(f.Name) || blank(f.Description) || blank(f.Industry) {
		return nil, domain.ErrInvalidCompany
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		defer release(context.WithoutCancel(ctx))
	}

	if err := s.guard.AssertUnderQuota(ctx, principal); err != nil {
		var quota *domain.QuotaExceededError
		if errors.As(err, &quota) {
			metrics.QuotaRejectionsTotal.WithLabelValues(string(quota.Tier)).Inc()
			s.logger.Info().Str("user_id", principal.ID).Int("limit", quota.Limit).Msg("company quota exceeded")
		}
		return nil, err
	}

	logoURL, bannerURL, err := s.storeMedia(ctx, input.Logo, "", input.Banner, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &domain.Company{
		OwnerID:     principal.ID,
		LogoURL:     logoURL,
		BannerURL:   bannerURL,
		SocialLinks: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyFields(company, f)

	created, err := s.repo.Create(ctx, company)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.ID).Msg("failed to create company")
		return nil, fmt.Errorf("create company: %w", err)
	}

	metrics.CompaniesCreatedTotal.WithLabelValues(string(principal.Tier())).Inc()
	s.logger.Info().Str("company_id", created.ID).Str("user_id", principal.ID).Msg("company created")
	return created, nil
}

// Update applies the supplied fields and media to a company the principal
// owns. A missing company is domain.ErrCompanyNotFound and a foreign one
// domain.ErrForbidden; nothing is uploaded in either case.
func (s *CompanyService) Update(ctx context.Context, principal domain.Principal, input ports.UpdateCompanyInput) (*domain.Company, error) {
	existing, err := s.findOwned(ctx, principal, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if blank(input.Fields.Industry) || cleared(input.Fields.Name) || cleared(input.Fields.Description) {
		return nil, domain.ErrInvalidCompany
	}

	logoURL, bannerURL, err := s.storeMedia(ctx, input.Logo, existing.LogoURL, input.Banner, existing.BannerURL)
	if err != nil {
		return nil, err
	}

	next := *existing
	applyFields(&next, input.Fields)
	if logoURL != "" {
		next.LogoURL = logoURL
	}
	if bannerURL != "" {
		next.BannerURL = bannerURL
	}
	next.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("company_id", existing.ID).Msg("failed to update company")
		return nil, fmt.Errorf("update company: %w", err)
	}

	s.logger.Info().Str("company_id", updated.ID).Str("user_id", principal.ID).Msg("company updated")
	return updated, nil
}

// GetOwned returns the company when principal owns it.
func (s *CompanyService) GetOwned(ctx context.Context, principal domain.Principal, companyID string) (*domain.Company, error) {
	return s.findOwned(ctx, principal, companyID)
}

// List is the public directory listing, newest first.
func (s *CompanyService) List(ctx context.Context, input ports.ListCompaniesInput) (*ports.ListCompaniesResult, error) {
	page := min(max(input.Page, 1), maxListPage)
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	items, total, err := s.repo.List(ctx, ports.ListCompaniesFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if items == nil {
		items = []*domain.Company{}
	}

	return &ports.ListCompaniesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *CompanyService) findOwned(ctx context.Context, principal domain.Principal, companyID string) (*domain.Company, error) {
	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
		return nil, fmt.Errorf("find company: %w", err)
	}
	if err := s.guard.AssertOwns(principal, company); err != nil {
		return nil, err
	}
	return company, nil
}

// storeMedia validates both slots up front, then uploads them concurrently.
// Each slot replaces its previous asset independently; a failure in one
// slot is returned without rolling back the other.
func (s *CompanyService) storeMedia(ctx context.Context, logo *ports.FileInput, prevLogo string, banner *ports.FileInput, prevBanner string) (string, string, error) {
	for slot, file := range map[string]*ports.FileInput{domain.SlotLogo: logo, domain.SlotBanner: banner} {
		if file == nil {
			continue
		}
		if _, err := s.media.Validate(file, slot); err != nil {
			metrics.MediaUploadsTotal.WithLabelValues(slot, "rejected").Inc()
			return "", "", err
		}
	}

	var (
		g                  errgroup.Group
		logoURL, bannerURL string
	)
	g.Go(func() error {
		var err error
		logoURL, err = s.media.Replace(ctx, logo, prevLogo, domain.SlotLogo)
		return err
	})
	g.Go(func() error {
		var err error
		bannerURL, err = s.media.Replace(ctx, banner, prevBanner, domain.SlotBanner)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return logoURL, bannerURL, nil
}

func applyFields(c *domain.Company, f ports.CompanyFields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Name, f.Name)
	set(&c.Description, f.Description)
	set(&c.Industry, f.Industry)
	set(&c.Phone, f.Phone)
	set(&c.Address, f.Address)
	set(&c.Website, f.Website)
	if f.SocialLinks != nil {
		c.SocialLinks = append([]string{}, f.SocialLinks...)
	}
	if f.IsVerified != nil {
		c.IsVerified = *f.IsVerified
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// cleared reports a field that was sent but holds only whitespace. Required
// fields may be omitted on update but never emptied.
func cleared(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}
