package socialsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/repo/account"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
)

// AccountService provides account registration, login, lookup and deletion.
type AccountService struct {
	Accounts  account.Repository
	Validator *Validator
	Tx        sqldb.Transactor
	Log       logging.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	accounts account.Repository,
	validator *Validator,
	tx sqldb.Transactor,
	log logging.Logger,
) *AccountService {
	return &AccountService{
		Accounts:  accounts,
		Validator: validator,
		Tx:        tx,
		Log:       log,
	}
}

// Register validates and stores a new account.
// Returns the account with its generated ID. A username taken concurrently
// between the check and the insert is reported as a duplicate as well.
func (s *AccountService) Register(ctx context.Context, candidate *domain.AccountCandidate) (_ *domain.Account, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "register account failed", "error", err)
		} else {
			log.InfoContext(ctx, "account registered")
		}
	}()

	var saved *domain.Account

	err = s.Tx.InTx(ctx, sqldb.IsolationStrict, func(ctx context.Context) error {
		acc, err := s.Validator.ValidateNewAccount(ctx, candidate)
		if err != nil {
			return err
		}

		log = log.With(logging.Group("account", "username", acc.Username))

		saved, err = s.Accounts.Save(ctx, acc)
		if err != nil {
			if errors.Is(err, domain.ErrStorageDuplicateKey) {
				return duplicateUsername(acc.Username).WithCause(err)
			}

			return fmt.Errorf("save account: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log = log.With(logging.Group("account", "id", saved.ID))

	return saved, nil
}

// Login returns the account matching the candidate's username and password.
func (s *AccountService) Login(ctx context.Context, candidate *domain.AccountCandidate) (_ *domain.Account, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	found, err := s.Validator.ValidateCredentials(ctx, candidate)
	if err != nil {
		return nil, err
	}

	log = log.With(logging.Group("account", "id", found.ID, "username", found.Username))

	return found, nil
}

// ListAccounts returns every account.
func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.Accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}

	return accounts, nil
}

// GetAccount returns the account with the ID.
// Returns nil and false if there is none.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*domain.Account, bool, error) {
	id, err := s.Validator.ValidateAccountLookup(&id)
	if err != nil {
		return nil, false, err
	}

	found, ok, err := s.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("find account: %w", err)
	}

	return found, ok, nil
}

// DeleteAccount removes the account and its messages.
// Returns false without error when no account has the ID.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) (deleted bool, err error) {
	log := s.Log.With(logging.Group("account", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "delete account failed", "error", err)
		} else {
			log.InfoContext(ctx, "delete account", "deleted", deleted)
		}
	}()

	err = s.Tx.InTx(ctx, sqldb.IsolationStrict, func(ctx context.Context) error {
		id, exists, err := s.Validator.ValidateAccountDeletion(ctx, &id)
		if err != nil || !exists {
			return err
		}

		n, err := s.Accounts.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}

		deleted = n > 0

		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// Close releases the repositories held by the service.
func (s *AccountService) Close() error {
	if err := s.Accounts.Close(); err != nil {
		return fmt.Errorf("close account repo: %w", err)
	}

	return nil
}
