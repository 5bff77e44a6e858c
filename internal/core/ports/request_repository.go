package ports

import (
	"context"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// ListRequestsFilter carries the query parameters for the admin review queue.
type ListRequestsFilter struct {
	Status         string                // optional: filter by request status
	CredentialType domain.CredentialType // optional: filter by credential variant
	Page           int                   // 1-based
	Limit          int                   // max rows per page (capped at 100 by the service)
}

// RequestRepository defines persistence operations for verification requests.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.VerificationRequest) error
	FindByID(ctx context.Context, id string) (*domain.VerificationRequest, error)
	// FindQueuedByCredential returns every queued request linked to the
	// referenced credential. The single-queued invariant means at most one is
	// expected, but the engine closes all it finds.
	FindQueuedByCredential(ctx context.Context, ref domain.CredentialRef) ([]*domain.VerificationRequest, error)
	// HasQueued reports whether the credential already has a queued request
	// outstanding. Used to enforce the single-queued invariant at creation.
	HasQueued(ctx context.Context, ref domain.CredentialRef) (bool, error)
	// Update persists the resolution fields (status, reviewer_id, notes,
	// updated_at) of an already-loaded request.
	Update(ctx context.Context, r *domain.VerificationRequest) error
	// List returns a page of requests matching filter and the total count.
	List(ctx context.Context, filter ListRequestsFilter) ([]*domain.VerificationRequest, int64, error)
}
