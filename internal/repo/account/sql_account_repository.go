package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
)

const accountColumns = "account_id, username, password"

// SQLAccountRepository implements Repository on the shared SQL database.
type SQLAccountRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLAccountRepository)(nil)

// NewSQLAccountRepository creates a new SQLAccountRepository on db.
func NewSQLAccountRepository(db *sqldb.DB, log logging.Logger) *SQLAccountRepository {
	return &SQLAccountRepository{
		db:  db,
		log: log,
	}
}

// ExistsByUsername implements Repository.ExistsByUsername.
func (r *SQLAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// FindByUsernameAndPassword implements Repository.FindByUsernameAndPassword.
func (r *SQLAccountRepository) FindByUsernameAndPassword(
	ctx context.Context, username, password string,
) (*domain.Account, bool, error) {
	return r.findOne(ctx, "username = ? AND password = ?", username, password)
}

// ExistsByUsernameAndPassword implements Repository.ExistsByUsernameAndPassword.
func (r *SQLAccountRepository) ExistsByUsernameAndPassword(ctx context.Context, username, password string) (bool, error) {
	return r.exists(ctx, "username = ? AND password = ?", username, password)
}

// Save implements Repository.Save.
func (r *SQLAccountRepository) Save(ctx context.Context, account domain.Account) (*domain.Account, error) {
	ext := sqldb.Ext(ctx, r.db)

	err := sqlx.GetContext(ctx, ext, &account.ID, ext.Rebind(
		"INSERT INTO account (username, password) VALUES (?, ?) RETURNING account_id",
	), account.Username, account.Password)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", sqldb.TranslateError(err))
	}

	r.log.DebugContext(ctx, "account inserted", "account_id", account.ID)

	return &account, nil
}

// FindByID implements Repository.FindByID.
func (r *SQLAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, bool, error) {
	return r.findOne(ctx, "account_id = ?", id)
}

// ExistsByID implements Repository.ExistsByID.
func (r *SQLAccountRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "account_id = ?", id)
}

// DeleteByID implements Repository.DeleteByID.
// Messages posted by the account are removed by the ON DELETE CASCADE constraint.
func (r *SQLAccountRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ext := sqldb.Ext(ctx, r.db)

	res, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM account WHERE account_id = ?"), id)
	if err != nil {
		return 0, fmt.Errorf("delete account: %w", sqldb.TranslateError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete account: rows affected: %w", sqldb.TranslateError(err))
	}

	r.log.DebugContext(ctx, "account deleted", "account_id", id, "rows", n)

	return n, nil
}

// FindAll implements Repository.FindAll.
func (r *SQLAccountRepository) FindAll(ctx context.Context) ([]domain.Account, error) {
	accounts := []domain.Account{}

	if err := sqlx.SelectContext(ctx, sqldb.Ext(ctx, r.db), &accounts,
		"SELECT "+accountColumns+" FROM account ORDER BY account_id",
	); err != nil {
		return nil, fmt.Errorf("query accounts: %w", sqldb.TranslateError(err))
	}

	return accounts, nil
}

// Close implements Repository.Close.
// The database handle is shared between repositories and closed by its owner.
func (r *SQLAccountRepository) Close() error {
	return nil
}

func (r *SQLAccountRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Account, bool, error) {
	var account domain.Account

	ext := sqldb.Ext(ctx, r.db)

	err := sqlx.GetContext(ctx, ext, &account, ext.Rebind(
		"SELECT "+accountColumns+" FROM account WHERE "+where,
	), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query account: %w", sqldb.TranslateError(err))
	}

	return &account, true, nil
}

func (r *SQLAccountRepository) exists(ctx context.Context, where string, args ...any) (bool, error) {
	var exists bool

	ext := sqldb.Ext(ctx, r.db)

	if err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(
		"SELECT EXISTS (SELECT 1 FROM account WHERE "+where+")",
	), args...); err != nil {
		return false, fmt.Errorf("query account exists: %w", sqldb.TranslateError(err))
	}

	return exists, nil
}
