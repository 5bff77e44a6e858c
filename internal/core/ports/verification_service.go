package ports

import (
	"context"
	"time"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// Actor is the acting principal resolved by the authorization gate and passed
// explicitly into every operation; services never read an ambient session.
type Actor struct {
	ID   string
	Role string
}

// Admin reports whether the actor holds administrative privilege.
func (a Actor) Admin() bool {
	return a.Role == domain.RoleAdmin
}

// SetCredentialStatusInput carries an adjudication decision for a credential.
type SetCredentialStatusInput struct {
	Type         domain.CredentialType
	CredentialID string
	Status       domain.CredentialStatus
	// Note is required when Status is rejected; it becomes the credential's
	// rejection reason and is recorded on any closed request.
	Note  string
	Actor Actor
}

// Review queue decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ResolveRequestInput resolves a verification request from the review queue.
type ResolveRequestInput struct {
	RequestID string
	Decision  string // approve or reject
	Note      string
	Actor     Actor
}

// SubmitCredentialInput carries a member-submitted credential. It is created
// in pending status; only an adjudication can move it further.
type SubmitCredentialInput struct {
	Type         domain.CredentialType
	OwnerID      string
	Title        string
	Organization string
	StartDate    *time.Time
	EndDate      *time.Time
}

// SubmitRequestInput asks for a review of one of the actor's credentials.
type SubmitRequestInput struct {
	Type         domain.CredentialType
	CredentialID string
	Actor        Actor
}

// ToggleBanInput suspends or reinstates a user account.
type ToggleBanInput struct {
	UserID string
	Banned bool
	Actor  Actor
}

// ListRequestsInput carries the parameters of the admin review queue listing.
type ListRequestsInput struct {
	Status         string
	CredentialType string
	Page           int
	Limit          int
	Actor          Actor
}

// ListRequestsResult is one page of the review queue.
type ListRequestsResult struct {
	Items      []*domain.VerificationRequest
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CredentialPortfolio groups a user's credentials by variant.
type CredentialPortfolio struct {
	Certifications  []*domain.Credential
	Educations      []*domain.Credential
	WorkExperiences []*domain.Credential
}

// VerificationService is the status transition engine: it applies
// adjudication decisions and keeps credential, request and trust score state
// consistent as one logical unit.
type VerificationService interface {
	SetCredentialStatus(ctx context.Context, input SetCredentialStatusInput) (*domain.Credential, error)
	ResolveRequest(ctx context.Context, input ResolveRequestInput) (*domain.Credential, error)
	SubmitCredential(ctx context.Context, input SubmitCredentialInput) (*domain.Credential, error)
	SubmitRequest(ctx context.Context, input SubmitRequestInput) (*domain.VerificationRequest, error)
	ListRequests(ctx context.Context, input ListRequestsInput) (*ListRequestsResult, error)
	ListCredentials(ctx context.Context, ownerID string) (*CredentialPortfolio, error)
	ToggleUserBan(ctx context.Context, input ToggleBanInput) (*domain.User, error)
}
