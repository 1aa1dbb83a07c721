package membership

import (
	"context"
	"fmt"

	"vendas-platform/pkg/repository"

	"gorm.io/gorm"
)

// UserDirectory resolves buyers to platform accounts.
type UserDirectory interface {
	// FindByEmail returns (nil, nil) when no account has the exact email.
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type userDirectory struct {
	users repository.Repository[User]
}

func NewUserDirectory(db *gorm.DB) UserDirectory {
	return &userDirectory{users: repository.ProvideStore[User](db)}
}

func (d *userDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, nil
	}
	u, err := d.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}
