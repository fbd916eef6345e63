package account

import (
	"context"

	"github.com/mkrupp/socialsvc/internal/domain"
)

// Repository defines the interface for account persistence.
type Repository interface {
	// ExistsByUsername reports whether an account with the username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// FindByUsernameAndPassword retrieves the account matching both fields.
	// Returns the account and true if found, or nil and false if not found.
	FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.Account, bool, error)

	// ExistsByUsernameAndPassword reports whether an account matches both fields.
	ExistsByUsernameAndPassword(ctx context.Context, username, password string) (bool, error)

	// Save inserts the account and returns it with its generated ID.
	// Returns an error wrapping domain.ErrStorageDuplicateKey if the username is taken.
	Save(ctx context.Context, account domain.Account) (*domain.Account, error)

	// FindByID retrieves an account by its ID.
	// Returns the account and true if found, or nil and false if not found.
	FindByID(ctx context.Context, id int64) (*domain.Account, bool, error)

	// ExistsByID reports whether an account with the ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// DeleteByID removes the account and the messages it posted.
	// Returns the number of accounts removed (0 or 1).
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// FindAll returns every account ordered by ID.
	FindAll(ctx context.Context) ([]domain.Account, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

