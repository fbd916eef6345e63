package message

import (
	"context"

	"github.com/mkrupp/socialsvc/internal/domain"
)

// Repository defines the interface for message persistence.
type Repository interface {
	// Save inserts the message when its ID is zero and updates its text otherwise.
	// Returns the stored message. Inserting for an unknown account fails with an
	// error wrapping domain.ErrStorageForeignKey; an update that does not touch
	// exactly one row fails with domain.ErrDataIntegrity.
	Save(ctx context.Context, message domain.Message) (*domain.Message, error)

	// FindByID retrieves a message by its ID.
	// Returns the message and true if found, or nil and false if not found.
	FindByID(ctx context.Context, id int64) (*domain.Message, bool, error)

	// ExistsByID reports whether a message with the ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// DeleteByID removes a message and returns the number of rows removed.
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// FindAll returns every message ordered by ID.
	FindAll(ctx context.Context) ([]domain.Message, error)

	// FindByPostedBy returns the messages posted by an account ordered by ID.
	FindByPostedBy(ctx context.Context, accountID int64) ([]domain.Message, error)

	// Close releases any resources held by the repository.
	Close() error
}

