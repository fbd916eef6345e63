package socialsvc

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/repo/account"
	"github.com/mkrupp/socialsvc/internal/repo/message"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 4

// Validator enforces field and cross-record rules before anything reaches
// storage. Every failure is a *domain.Error carrying a caller-safe reason.
type Validator struct {
	Accounts account.Repository
	Messages message.Repository
}

// NewValidator creates a Validator reading from the given repositories.
func NewValidator(accounts account.Repository, messages message.Repository) *Validator {
	return &Validator{
		Accounts: accounts,
		Messages: messages,
	}
}

// ValidateNewAccount checks a registration candidate and that its username is free.
// Returns the account ready to be saved.
func (v *Validator) ValidateNewAccount(ctx context.Context, candidate *domain.AccountCandidate) (domain.Account, error) {
	switch {
	case candidate == nil:
		return domain.Account{}, invalid("Account is null. Account creation failed.")
	case candidate.Username == nil:
		return domain.Account{}, invalid("Username is null. Account creation failed.")
	case isBlank(*candidate.Username):
		return domain.Account{}, invalid("Username is blank. Account creation failed.")
	case candidate.Password == nil:
		return domain.Account{}, invalid("Password is null. Account creation failed.")
	case isBlank(*candidate.Password):
		return domain.Account{}, invalid("Password is blank. Account creation failed.")
	case utf8.RuneCountInString(*candidate.Password) < MinPasswordLength:
		return domain.Account{}, invalid(
			"Password is too short. It must be at least %d characters. Account creation failed.", MinPasswordLength)
	}

	username := *candidate.Username

	exists, err := v.Accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, fmt.Errorf("check username: %w", err)
	}

	if exists {
		return domain.Account{}, duplicateUsername(username)
	}

	//nolint:exhaustruct
	return domain.Account{
		Username: username,
		Password: *candidate.Password,
	}, nil
}

// ValidateCredentials checks a login candidate and returns the matching account.
func (v *Validator) ValidateCredentials(ctx context.Context, candidate *domain.AccountCandidate) (*domain.Account, error) {
	switch {
	case candidate == nil:
		return nil, invalid("Account is null. Checking if account exists failed.")
	case candidate.Username == nil:
		return nil, invalid("Username is null. Null user does not exist.")
	case candidate.Password == nil:
		return nil, invalid("Password is null. User with null password does not exist.")
	case isBlank(*candidate.Username):
		return nil, invalid("Username is blank. Blank user does not exist.")
	case isBlank(*candidate.Password):
		return nil, invalid("Password is blank. User with blank password does not exist.")
	}

	found, ok, err := v.Accounts.FindByUsernameAndPassword(ctx, *candidate.Username, *candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !ok {
		return nil, domain.NewError(domain.ErrAuthenticationFailed,
			"Authentication failed for account with username: %s.", *candidate.Username)
	}

	return found, nil
}

// ValidateNewMessage checks a message candidate and that its author exists.
// Returns the message ready to be saved.
func (v *Validator) ValidateNewMessage(ctx context.Context, candidate *domain.MessageCandidate) (domain.Message, error) {
	switch {
	case candidate == nil:
		return domain.Message{}, invalid("Message object is null. Message creation failed.")
	case candidate.Text == nil || isBlank(*candidate.Text):
		return domain.Message{}, invalid("Message text cannot be empty. Message creation failed.")
	case tooLong(*candidate.Text):
		return domain.Message{}, invalid(
			"Message text exceeds maximum length of %d characters. Message creation failed.", domain.MaxMessageLength)
	case candidate.PostedBy == nil:
		return domain.Message{}, invalid("User ID cannot be null. Message creation failed.")
	}

	postedBy := *candidate.PostedBy

	exists, err := v.Accounts.ExistsByID(ctx, postedBy)
	if err != nil {
		return domain.Message{}, fmt.Errorf("check author: %w", err)
	}

	if !exists {
		return domain.Message{}, unknownAuthor(postedBy)
	}

	//nolint:exhaustruct
	return domain.Message{
		PostedBy:        postedBy,
		Text:            *candidate.Text,
		TimePostedEpoch: candidate.TimePostedEpoch,
	}, nil
}

// ValidateMessageUpdate checks the new text for an existing message.
// Returns the stored message with its text replaced.
func (v *Validator) ValidateMessageUpdate(ctx context.Context, id *int64, text *string) (domain.Message, error) {
	switch {
	case id == nil:
		return domain.Message{}, invalid("Message ID cannot be null. Message update failed.")
	case text == nil || isBlank(*text):
		return domain.Message{}, invalid("Message text cannot be empty. Message update failed.")
	case tooLong(*text):
		return domain.Message{}, invalid(
			"Message text exceeds maximum length of %d characters. Message update failed.", domain.MaxMessageLength)
	}

	existing, ok, err := v.Messages.FindByID(ctx, *id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("find message: %w", err)
	}

	if !ok {
		return domain.Message{}, missingMessage(*id, "update")
	}

	existing.Text = *text

	return *existing, nil
}

// ValidateAccountLookup checks the ID of an account to read.
// An unknown ID is not an error: the caller reports "no result".
func (v *Validator) ValidateAccountLookup(id *int64) (int64, error) {
	if id == nil {
		return 0, invalid("Account ID cannot be null. Account retrieval failed.")
	}

	return *id, nil
}

// ValidateMessageLookup checks the ID of a message to read.
// An unknown ID is not an error: the caller reports "no result".
func (v *Validator) ValidateMessageLookup(id *int64) (int64, error) {
	if id == nil {
		return 0, invalid("Message ID cannot be null. Message retrieval failed.")
	}

	return *id, nil
}

// ValidateAccountMessagesLookup checks that the account whose messages are
// listed exists. Unlike a plain lookup, an unknown account is an error.
func (v *Validator) ValidateAccountMessagesLookup(ctx context.Context, id *int64) (int64, error) {
	if id == nil {
		return 0, invalid("Account ID cannot be null. Message retrieval failed.")
	}

	exists, err := v.Accounts.ExistsByID(ctx, *id)
	if err != nil {
		return 0, fmt.Errorf("check account: %w", err)
	}

	if !exists {
		return 0, domain.NewError(domain.ErrRecordMissing,
			"User with ID %d does not exist. Message retrieval failed.", *id)
	}

	return *id, nil
}

// ValidateAccountDeletion checks the ID of an account to delete and reports
// whether it exists. Deleting an unknown account is a no-op, not an error.
func (v *Validator) ValidateAccountDeletion(ctx context.Context, id *int64) (int64, bool, error) {
	if id == nil {
		return 0, false, invalid("Account ID cannot be null. Account deletion failed.")
	}

	exists, err := v.Accounts.ExistsByID(ctx, *id)
	if err != nil {
		return 0, false, fmt.Errorf("check account: %w", err)
	}

	return *id, exists, nil
}

// ValidateMessageDeletion checks the ID of a message to delete.
// Deleting an unknown message is a rejected request.
func (v *Validator) ValidateMessageDeletion(ctx context.Context, id *int64) (int64, error) {
	if id == nil {
		return 0, invalid("Message ID cannot be null. Message deletion failed.")
	}

	exists, err := v.Messages.ExistsByID(ctx, *id)
	if err != nil {
		return 0, fmt.Errorf("check message: %w", err)
	}

	if !exists {
		return 0, missingMessage(*id, "deletion")
	}

	return *id, nil
}

func invalid(format string, args ...any) *domain.Error {
	return domain.NewError(domain.ErrInvalidInput, format, args...)
}

func duplicateUsername(username string) *domain.Error {
	return domain.NewError(domain.ErrDuplicateResource,
		"An account with the same username: %s already exists - Account creation failed.", username)
}

func unknownAuthor(id int64) *domain.Error {
	return domain.NewError(domain.ErrRequestRejected,
		"User with ID %d does not exist. Message creation failed.", id).WithCause(domain.ErrReferenceNotFound)
}

func missingMessage(id int64, action string) *domain.Error {
	return domain.NewError(domain.ErrRequestRejected,
		"Message with ID %d not found. Message %s failed.", id, action).WithCause(domain.ErrRecordMissing)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func tooLong(s string) bool {
	return utf8.RuneCountInString(s) > domain.MaxMessageLength
}
