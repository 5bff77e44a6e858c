package ports

import (
	"context"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// UserRepository defines the persistence operations the engines need on user
// accounts. Account creation and login lookups live on AuthRepository.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateTrustScore persists a recomputed score onto the user record.
	UpdateTrustScore(ctx context.Context, userID string, score int) error
	// UpdateStatus persists the account status (active/suspended).
	UpdateStatus(ctx context.Context, userID string, status domain.AccountStatus) error
	// ListIDs returns the ids of all users, for bulk score recomputation.
	ListIDs(ctx context.Context) ([]string, error)
}
