package domain

import (
	"slices"
	"strings"
)

// QuotaPolicy is the maximum number of companies per tier.
type QuotaPolicy struct {
	Free    int
	Premium int
}

// DefaultQuotaPolicy mirrors the product limits: 2 free, 4 premium.
var DefaultQuotaPolicy = QuotaPolicy{Free: 2, Premium: 4}

// Limit returns the maximum for the tier; unknown tiers get the free limit.
func (q QuotaPolicy) Limit(t Tier) int {
	if t == TierPremium {
		return q.Premium
	}
	return q.Free
}

// Media slot names. Each slot has its own UploadPolicy.
const (
	SlotLogo   = "logo"
	SlotBanner = "banner"
)

// UploadPolicy bounds the files accepted for one media slot.
type UploadPolicy struct {
	Folder         string
	MaxSizeBytes   int64
	AllowedFormats []string
}

// DefaultImageFormats are the accepted image subtypes.
var DefaultImageFormats = []string{"jpg", "jpeg", "png", "webp", "avif"}

// DefaultUploadPolicies are the stock policies for the logo and banner slots.
func DefaultUploadPolicies() map[string]UploadPolicy {
	return map[string]UploadPolicy{
		SlotLogo: {
			Folder:         "company-logos",
			MaxSizeBytes:   5 << 20,
			AllowedFormats: slices.Clone(DefaultImageFormats),
		},
		SlotBanner: {
			Folder:         "company-banners",
			MaxSizeBytes:   10 << 20,
			AllowedFormats: slices.Clone(DefaultImageFormats),
		},
	}
}

// FormatFromContentType returns the subtype of a MIME type
// ("image/png; q=1" → "png").
func FormatFromContentType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(mt), "/")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(sub))
}

// Check validates size and format, size first. A nil return means the file
// may be uploaded.
func (p UploadPolicy) Check(slot string, size int64, contentType string) error {
	if size > p.MaxSizeBytes {
		return &ValidationError{Slot: slot, Bound: BoundSize, Limit: p.MaxSizeBytes, Got: size}
	}
	format := FormatFromContentType(contentType)
	if format == "" || !slices.Contains(p.AllowedFormats, format) {
		return &ValidationError{Slot: slot, Bound: BoundFormat, Format: format, Allowed: p.AllowedFormats}
	}
	return nil
}
