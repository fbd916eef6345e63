package socialclient

import (
	"context"

	"github.com/mkrupp/socialsvc/internal/domain"
)

// Client defines the operations of the social media API as seen by a caller.
type Client interface {
	// Register creates an account and returns it with its generated ID.
	Register(ctx context.Context, username, password string) (*domain.Account, error)

	// Login returns the account matching username and password.
	Login(ctx context.Context, username, password string) (*domain.Account, error)

	// PostMessage posts a message and returns it with its generated ID.
	PostMessage(ctx context.Context, text string, postedBy int64) (*domain.Message, error)

	// GetMessage returns the message and true, or nil and false if there is none.
	GetMessage(ctx context.Context, id int64) (*domain.Message, bool, error)

	// UpdateMessage replaces a message's text and returns the rows affected.
	UpdateMessage(ctx context.Context, id int64, text string) (int, error)

	// DeleteMessage deletes a message and returns the rows affected, or 0 if there was none.
	DeleteMessage(ctx context.Context, id int64) (int, error)

	ListMessages(ctx context.Context) ([]domain.Message, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// GetAccount returns the account and true, or nil and false if there is none.
	GetAccount(ctx context.Context, id int64) (*domain.Account, bool, error)

	ListAccountMessages(ctx context.Context, accountID int64) ([]domain.Message, error)

	// DeleteAccount deletes an account and reports whether it existed.
	DeleteAccount(ctx context.Context, accountID int64) (bool, error)
}
