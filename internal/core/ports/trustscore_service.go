package ports

import (
	"context"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// CategoryCounts reports the per-status credential counts of one category.
type CategoryCounts struct {
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// VerificationSummary reports per-category counts without scoring. It is
// derived from the same credential query the score computation uses, so the
// two views never disagree.
type VerificationSummary struct {
	Certifications  CategoryCounts `json:"certifications"`
	Educations      CategoryCounts `json:"educations"`
	WorkExperiences CategoryCounts `json:"work_experiences"`
}

// TrustScoreProfile is the presentation view of a user's standing. Suspended
// accounts expose no breakdown; the numeric score is suppressed rather than
// overloaded with a sentinel.
type TrustScoreProfile struct {
	Suspended bool
	Breakdown *domain.TrustScoreBreakdown // nil when suspended
}

// TrustScoreService is the trust score engine. CalculateTrustScore,
// GetTrustScoreProfile and GetVerificationSummary are read-only derivations;
// UpdateUserTrustScore is the single operation that persists, and it is
// idempotent.
type TrustScoreService interface {
	CalculateTrustScore(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error)
	GetTrustScoreProfile(ctx context.Context, userID string) (*TrustScoreProfile, error)
	GetVerificationSummary(ctx context.Context, userID string) (*VerificationSummary, error)
	UpdateUserTrustScore(ctx context.Context, userID string) (int, error)
}
