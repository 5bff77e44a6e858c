package ports

import (
	"context"

	"github.com/proconnect/verification-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, plan string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
