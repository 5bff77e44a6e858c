package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

const maxListLimit = 100

type verificationService struct {
	credentials ports.CredentialRepository
	requests    ports.RequestRepository
	users       ports.UserRepository
	scores      ports.TrustScoreService
	tx          ports.TxRunner
	cache       ScoreCache
	log         zerolog.Logger
}

// NewVerificationService returns a VerificationService implementation.
// cache may be nil when no breakdown cache is configured.
func NewVerificationService(
	credentials ports.CredentialRepository,
	requests ports.RequestRepository,
	users ports.UserRepository,
	scores ports.TrustScoreService,
	tx ports.TxRunner,
	cache ScoreCache,
	log zerolog.Logger,
) ports.VerificationService {
	return &verificationService{
		credentials: credentials,
		requests:    requests,
		users:       users,
		scores:      scores,
		tx:          tx,
		cache:       cache,
		log:         log,
	}
}

// SetCredentialStatus applies an adjudication decision: it updates the
// credential's lifecycle fields, closes every queued request linked to it,
// and recomputes the owner's trust score — all within one transaction.
// Failures leave prior state untouched.
func (s *verificationService) SetCredentialStatus(ctx context.Context, input ports.SetCredentialStatusInput) (*domain.Credential, error) {
	if !input.Actor.Admin() {
		return nil, fmt.Errorf("set credential status: %w", domain.ErrForbidden)
	}
	if !domain.ValidCredentialType(input.Type) {
		return nil, fmt.Errorf("set credential status: %w", domain.ErrInvalidCredentialType)
	}
	if !domain.ValidCredentialStatus(input.Status) {
		return nil, fmt.Errorf("set credential status: %w", domain.ErrInvalidStatus)
	}
	if input.Status == domain.CredentialRejected && strings.TrimSpace(input.Note) == "" {
		return nil, fmt.Errorf("set credential status: %w", domain.ErrNoteRequired)
	}

	var updated *domain.Credential
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cred, err := s.credentials.FindByID(ctx, input.Type, input.CredentialID)
		if err != nil {
			return fmt.Errorf("set credential status: %w", err)
		}

		now := time.Now().UTC()
		cred.ApplyStatus(input.Status, input.Note, now)
		if err := s.credentials.UpdateStatus(ctx, cred); err != nil {
			return fmt.Errorf("set credential status: %w", err)
		}

		ref := domain.CredentialRef{Type: input.Type, ID: cred.ID}
		queued, err := s.requests.FindQueuedByCredential(ctx, ref)
		if err != nil {
			return fmt.Errorf("set credential status: %w", err)
		}
		for _, req := range queued {
			req.Close(input.Status == domain.CredentialVerified, input.Actor.ID, input.Note, now)
			if err := s.requests.Update(ctx, req); err != nil {
				return fmt.Errorf("set credential status: close request %s: %w", req.ID, err)
			}
		}

		// Recompute unconditionally: a reset must lower the score just as an
		// approval must raise it.
		if _, err := s.scores.UpdateUserTrustScore(ctx, cred.OwnerID); err != nil {
			return fmt.Errorf("set credential status: %w", err)
		}

		updated = cred
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateScore(ctx, updated.OwnerID)

	s.log.Info().
		Str("credential_type", string(input.Type)).
		Str("credential_id", updated.ID).
		Str("status", string(input.Status)).
		Str("admin_id", input.Actor.ID).
		Msg("credential adjudicated")

	return updated, nil
}

// ResolveRequest looks up a queued verification request, determines the
// linked credential, and delegates to SetCredentialStatus with the decision
// mapped to a credential status.
func (s *verificationService) ResolveRequest(ctx context.Context, input ports.ResolveRequestInput) (*domain.Credential, error) {
	if !input.Actor.Admin() {
		return nil, fmt.Errorf("resolve request: %w", domain.ErrForbidden)
	}

	var status domain.CredentialStatus
	switch input.Decision {
	case ports.DecisionApprove:
		status = domain.CredentialVerified
	case ports.DecisionReject:
		status = domain.CredentialRejected
	default:
		return nil, fmt.Errorf("resolve request: %w", domain.ErrInvalidDecision)
	}

	req, err := s.requests.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	if req.Status != domain.RequestQueued {
		return nil, fmt.Errorf("resolve request: %w", domain.ErrRequestNotQueued)
	}
	if req.Credential.ID == "" || !domain.ValidCredentialType(req.Credential.Type) {
		return nil, fmt.Errorf("resolve request: %w", domain.ErrCredentialNotFound)
	}

	return s.SetCredentialStatus(ctx, ports.SetCredentialStatusInput{
		Type:         req.Credential.Type,
		CredentialID: req.Credential.ID,
		Status:       status,
		Note:         input.Note,
		Actor:        input.Actor,
	})
}

// SubmitCredential creates a new credential in pending status.
func (s *verificationService) SubmitCredential(ctx context.Context, input ports.SubmitCredentialInput) (*domain.Credential, error) {
	if !domain.ValidCredentialType(input.Type) {
		return nil, fmt.Errorf("submit credential: %w", domain.ErrInvalidCredentialType)
	}

	now := time.Now().UTC()
	cred := &domain.Credential{
		Type:         input.Type,
		OwnerID:      input.OwnerID,
		Title:        input.Title,
		Organization: input.Organization,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       domain.CredentialPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("submit credential: %w", err)
	}

	s.log.Info().
		Str("credential_type", string(input.Type)).
		Str("credential_id", cred.ID).
		Str("owner_id", input.OwnerID).
		Msg("credential submitted")

	return cred, nil
}

// SubmitRequest queues a verification request for one of the actor's
// credentials, enforcing the at-most-one-queued-per-credential invariant.
func (s *verificationService) SubmitRequest(ctx context.Context, input ports.SubmitRequestInput) (*domain.VerificationRequest, error) {
	if !domain.ValidCredentialType(input.Type) {
		return nil, fmt.Errorf("submit request: %w", domain.ErrInvalidCredentialType)
	}

	cred, err := s.credentials.FindByID(ctx, input.Type, input.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	if cred.OwnerID != input.Actor.ID && !input.Actor.Admin() {
		return nil, fmt.Errorf("submit request: %w", domain.ErrForbidden)
	}

	ref := domain.CredentialRef{Type: input.Type, ID: cred.ID}
	queued, err := s.requests.HasQueued(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	if queued {
		return nil, fmt.Errorf("submit request: %w", domain.ErrRequestAlreadyQueued)
	}

	now := time.Now().UTC()
	req := &domain.VerificationRequest{
		Credential: ref,
		OwnerID:    cred.OwnerID,
		Status:     domain.RequestQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}

	s.log.Info().
		Str("request_id", req.ID).
		Str("credential_type", string(input.Type)).
		Str("credential_id", cred.ID).
		Msg("verification requested")

	return req, nil
}

// ListRequests returns a page of the admin review queue.
func (s *verificationService) ListRequests(ctx context.Context, input ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
	if !input.Actor.Admin() {
		return nil, fmt.Errorf("list requests: %w", domain.ErrForbidden)
	}
	if input.CredentialType != "" && !domain.ValidCredentialType(domain.CredentialType(input.CredentialType)) {
		return nil, fmt.Errorf("list requests: %w", domain.ErrInvalidCredentialType)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, total, err := s.requests.List(ctx, ports.ListRequestsFilter{
		Status:         input.Status,
		CredentialType: domain.CredentialType(input.CredentialType),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListRequestsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ListCredentials returns a user's credentials grouped by variant.
func (s *verificationService) ListCredentials(ctx context.Context, ownerID string) (*ports.CredentialPortfolio, error) {
	certs, err := s.credentials.ListByOwner(ctx, domain.TypeCertification, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	edus, err := s.credentials.ListByOwner(ctx, domain.TypeEducation, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	exps, err := s.credentials.ListByOwner(ctx, domain.TypeWorkExperience, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return &ports.CredentialPortfolio{
		Certifications:  certs,
		Educations:      edus,
		WorkExperiences: exps,
	}, nil
}

// ToggleUserBan suspends or reinstates an account. Suspension flips the
// account status only — the numeric score is left alone and presentation
// suppresses it. Reinstating recomputes from the current credential set;
// there is no score history to restore from.
func (s *verificationService) ToggleUserBan(ctx context.Context, input ports.ToggleBanInput) (*domain.User, error) {
	if !input.Actor.Admin() {
		return nil, fmt.Errorf("toggle user ban: %w", domain.ErrForbidden)
	}

	var updated *domain.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, input.UserID)
		if err != nil {
			return fmt.Errorf("toggle user ban: %w", err)
		}

		status := domain.AccountActive
		if input.Banned {
			status = domain.AccountSuspended
		}
		if err := s.users.UpdateStatus(ctx, user.ID, status); err != nil {
			return fmt.Errorf("toggle user ban: %w", err)
		}
		user.Status = status

		if !input.Banned {
			score, err := s.scores.UpdateUserTrustScore(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("toggle user ban: %w", err)
			}
			user.TrustScore = score
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateScore(ctx, updated.ID)

	s.log.Info().
		Str("user_id", updated.ID).
		Bool("banned", input.Banned).
		Str("admin_id", input.Actor.ID).
		Msg("account status toggled")

	return updated, nil
}

// invalidateScore drops the cached breakdown after a committed mutation.
// Cache failures are non-fatal; the entry expires on its own TTL.
func (s *verificationService) invalidateScore(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate score cache")
	}
}
