package domain

import (
	"errors"
	"slices"
	"time"
)

// Tier determines how many companies a principal may own.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// RolePremium is the role marker that lifts a user to the premium tier.
const RolePremium = "premium"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Billing holds the optional references to the external billing provider.
type Billing struct {
	CustomerID       string     `json:"stripeCustomerId,omitempty"`
	SubscriptionID   string     `json:"stripeSubscriptionId,omitempty"`
	PriceID          string     `json:"stripePriceId,omitempty"`
	CurrentPeriodEnd *time.Time `json:"stripeCurrentPeriodEnd,omitempty"`
}

// User is the persisted account record.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Billing      Billing   `json:"billing"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the read-only view of an authenticated user. It never carries
// the password hash.
type Principal struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Billing Billing  `json:"billing"`
}

// Principal projects the user onto its authenticated view.
func (u *User) Principal() Principal {
	return Principal{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Roles:   slices.Clone(u.Roles),
		Billing: u.Billing,
	}
}

// Tier is free unless the role set contains the premium marker.
func (p Principal) Tier() Tier {
	if slices.Contains(p.Roles, RolePremium) {
		return TierPremium
	}
	return TierFree
}
