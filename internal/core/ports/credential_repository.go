package ports

import (
	"context"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// CredentialRepository defines persistence operations for the three
// credential variants. Implementations dispatch on the credential type to
// select the backing collection.
type CredentialRepository interface {
	Create(ctx context.Context, c *domain.Credential) error
	// FindByID retrieves a credential of the stated type.
	FindByID(ctx context.Context, credType domain.CredentialType, id string) (*domain.Credential, error)
	// UpdateStatus persists the status lifecycle fields (status, verified_at,
	// rejection_reason, updated_at) of an already-loaded credential.
	UpdateStatus(ctx context.Context, c *domain.Credential) error
	// ListByOwner returns all credentials of one type owned by ownerID.
	ListByOwner(ctx context.Context, credType domain.CredentialType, ownerID string) ([]*domain.Credential, error)
}
