package domain

import (
	"errors"
	"time"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidCompany  = errors.New("name, description and industry are required")

	// ErrCreationInProgress is returned when another creation for the same
	// owner holds the per-owner lock.
	ErrCreationInProgress = errors.New("another company creation is in progress")
)

// Company is an owned directory entry. OwnerID is fixed at creation.
type Company struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	OwnerID     string    `json:"userId" bson:"owner_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Industry    string    `json:"industry" bson:"industry"`
	LogoURL     string    `json:"logoUrl,omitempty" bson:"logo_url,omitempty"`
	BannerURL   string    `json:"bannerUrl,omitempty" bson:"banner_url,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Website     string    `json:"website,omitempty" bson:"website,omitempty"`
	SocialLinks []string  `json:"socialLinks" bson:"social_links"`
	IsVerified  bool      `json:"isVerified" bson:"is_verified"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// OwnedBy reports whether the company belongs to the given principal.
func (c *Company) OwnedBy(principalID string) bool {
	return principalID != "" && c.OwnerID == principalID
}
