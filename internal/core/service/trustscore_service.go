package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// ScoreCache abstracts the breakdown cache (Redis). A miss is reported as a
// nil breakdown with a nil error.
type ScoreCache interface {
	Get(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error)
	Set(ctx context.Context, userID string, b *domain.TrustScoreBreakdown) error
	Invalidate(ctx context.Context, userID string) error
}

type trustScoreService struct {
	credentials ports.CredentialRepository
	users       ports.UserRepository
	cache       ScoreCache
	log         zerolog.Logger
}

// NewTrustScoreService returns a TrustScoreService implementation. cache may
// be nil, in which case every read computes fresh.
func NewTrustScoreService(
	credentials ports.CredentialRepository,
	users ports.UserRepository,
	cache ScoreCache,
	log zerolog.Logger,
) ports.TrustScoreService {
	return &trustScoreService{
		credentials: credentials,
		users:       users,
		cache:       cache,
		log:         log,
	}
}

// CalculateTrustScore derives the breakdown for a user from their current
// credential set. The result is cached; cache failures are non-fatal.
func (s *trustScoreService) CalculateTrustScore(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("calculate trust score: %w", err)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("score cache read failed, computing fresh")
		} else if cached != nil {
			return cached, nil
		}
	}

	breakdown, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, breakdown); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to populate score cache")
		}
	}
	return breakdown, nil
}

// GetTrustScoreProfile is the profile read path: suspended accounts surface
// as suspended with no breakdown, everyone else gets the full breakdown.
func (s *trustScoreService) GetTrustScoreProfile(ctx context.Context, userID string) (*ports.TrustScoreProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("trust score profile: %w", err)
	}
	if user.Suspended() {
		return &ports.TrustScoreProfile{Suspended: true}, nil
	}

	breakdown, err := s.CalculateTrustScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ports.TrustScoreProfile{Breakdown: breakdown}, nil
}

// GetVerificationSummary reports per-category counts of verified, pending and
// rejected credentials. It runs the same credential query the score
// computation uses.
func (s *trustScoreService) GetVerificationSummary(ctx context.Context, userID string) (*ports.VerificationSummary, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("verification summary: %w", err)
	}

	certs, edus, exps, err := s.loadPortfolio(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("verification summary: %w", err)
	}

	return &ports.VerificationSummary{
		Certifications:  countByStatus(certs),
		Educations:      countByStatus(edus),
		WorkExperiences: countByStatus(exps),
	}, nil
}

// UpdateUserTrustScore computes the breakdown from the stored credential set
// and persists the total onto the user record. It never reads the cache, so
// repeated calls without credential changes always store the same value.
func (s *trustScoreService) UpdateUserTrustScore(ctx context.Context, userID string) (int, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("update trust score: %w", err)
	}

	breakdown, err := s.compute(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.users.UpdateTrustScore(ctx, userID, breakdown.TotalScore); err != nil {
		return 0, fmt.Errorf("update trust score: %w", err)
	}

	s.log.Debug().Str("user_id", userID).Int("score", breakdown.TotalScore).Msg("trust score persisted")
	return breakdown.TotalScore, nil
}

// compute is the pure scoring function: base 20, certifications 15 per
// verified capped at 30, education and experience 20 per verified capped at
// 35 each, total clamped to [0, 100].
func (s *trustScoreService) compute(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	certs, edus, exps, err := s.loadPortfolio(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compute trust score: %w", err)
	}

	certCounts := countByStatus(certs)
	eduCounts := countByStatus(edus)
	expCounts := countByStatus(exps)

	certScore := capScore(certCounts.Verified*domain.CertificationWeight, domain.CertificationCap)
	eduScore := capScore(eduCounts.Verified*domain.EducationWeight, domain.EducationCap)
	expScore := capScore(expCounts.Verified*domain.ExperienceWeight, domain.ExperienceCap)

	total := domain.ClampScore(domain.ScoreBase + certScore + eduScore + expScore)

	return &domain.TrustScoreBreakdown{
		TotalScore: total,
		Level:      domain.ScoreLevel(total),
		Certifications: domain.CategoryScore{
			Score: certScore,
			// The flag means "everything submitted is verified", not merely
			// "something is verified" — and an empty category is never verified.
			Verified: certCounts.Total > 0 && certCounts.Verified == certCounts.Total,
			Total:    certCounts.Total,
			Count:    certCounts.Verified,
		},
		Education: domain.CategoryScore{
			Score:    eduScore,
			Verified: eduCounts.Verified > 0,
			Total:    eduCounts.Total,
			Count:    eduCounts.Verified,
		},
		Experience: domain.CategoryScore{
			Score:    expScore,
			Verified: expCounts.Verified > 0,
			Total:    expCounts.Total,
			Count:    expCounts.Verified,
		},
		NoCertifications: certCounts.Total == 0,
	}, nil
}

func (s *trustScoreService) loadPortfolio(ctx context.Context, userID string) (certs, edus, exps []*domain.Credential, err error) {
	if certs, err = s.credentials.ListByOwner(ctx, domain.TypeCertification, userID); err != nil {
		return nil, nil, nil, err
	}
	if edus, err = s.credentials.ListByOwner(ctx, domain.TypeEducation, userID); err != nil {
		return nil, nil, nil, err
	}
	if exps, err = s.credentials.ListByOwner(ctx, domain.TypeWorkExperience, userID); err != nil {
		return nil, nil, nil, err
	}
	return certs, edus, exps, nil
}

func countByStatus(creds []*domain.Credential) ports.CategoryCounts {
	counts := ports.CategoryCounts{Total: len(creds)}
	for _, c := range creds {
		switch c.Status {
		case domain.CredentialVerified:
			counts.Verified++
		case domain.CredentialRejected:
			counts.Rejected++
		default:
			counts.Pending++
		}
	}
	return counts
}

func capScore(raw, limit int) int {
	if raw > limit {
		return limit
	}
	return raw
}
