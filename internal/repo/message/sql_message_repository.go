package message

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

const messageColumns = "message_id, posted_by, message_text, time_posted_epoch"

// SQLMessageRepository implements Repository on the shared SQL database.
type SQLMessageRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLMessageRepository)(nil)

// NewSQLMessageRepository creates a new SQLMessageRepository on db.
func NewSQLMessageRepository(db *sqldb.DB, log logging.Logger) *SQLMessageRepository {
	return &SQLMessageRepository{
		db:  db,
		log: log,
	}
}

// Save implements Repository.Save.
func (r *SQLMessageRepository) Save(ctx context.Context, message domain.Message) (*domain.Message, error) {
	if message.ID == 0 {
		return r.insert(ctx, message)
	}

	ext := sqldb.Ext(ctx, r.db)

	res, err := ext.ExecContext(ctx, ext.Rebind(
		"UPDATE message SET message_text = ? WHERE message_id = ?",
	), message.Text, message.ID)
	if err != nil {
		return nil, fmt.Errorf("update message: %w", sqldb.TranslateError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update message: rows affected: %w", sqldb.TranslateError(err))
	}

	if n != 1 {
		return nil, domain.NewError(domain.ErrDataIntegrity,
			"Message with ID %d could not be updated. Expected 1 row affected, got %d.", message.ID, n)
	}

	r.log.DebugContext(ctx, "message updated", "message_id", message.ID)

	return &message, nil
}

func (r *SQLMessageRepository) insert(ctx context.Context, message domain.Message) (*domain.Message, error) {
	ext := sqldb.Ext(ctx, r.db)

	err := sqlx.GetContext(ctx, ext, &message.ID, ext.Rebind(
		"INSERT INTO message (posted_by, message_text, time_posted_epoch) VALUES (?, ?, ?) RETURNING message_id",
	), message.PostedBy, message.Text, message.TimePostedEpoch)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", sqldb.TranslateError(err))
	}

	r.log.DebugContext(ctx, "message inserted", "message_id", message.ID, "posted_by", message.PostedBy)

	return &message, nil
}

// FindByID implements Repository.FindByID.
func (r *SQLMessageRepository) FindByID(ctx context.Context, id int64) (*domain.Message, bool, error) {
	var message domain.Message

	ext := sqldb.Ext(ctx, r.db)

	err := sqlx.GetContext(ctx, ext, &message, ext.Rebind(
		"SELECT "+messageColumns+" FROM message WHERE message_id = ?",
	), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query message: %w", sqldb.TranslateError(err))
	}

	return &message, true, nil
}

// ExistsByID implements Repository.ExistsByID.
func (r *SQLMessageRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool

	ext := sqldb.Ext(ctx, r.db)

	if err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(
		"SELECT EXISTS (SELECT 1 FROM message WHERE message_id = ?)",
	), id); err != nil {
		return false, fmt.Errorf("query message exists: %w", sqldb.TranslateError(err))
	}

	return exists, nil
}

// DeleteByID implements Repository.DeleteByID.
func (r *SQLMessageRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ext := sqldb.Ext(ctx, r.db)

	res, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM message WHERE message_id = ?"), id)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", sqldb.TranslateError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete message: rows affected: %w", sqldb.TranslateError(err))
	}

	return n, nil
}

// FindAll implements Repository.FindAll.
func (r *SQLMessageRepository) FindAll(ctx context.Context) ([]domain.Message, error) {
	return r.selectMessages(ctx, "SELECT "+messageColumns+" FROM message ORDER BY message_id")
}

// FindByPostedBy implements Repository.FindByPostedBy.
func (r *SQLMessageRepository) FindByPostedBy(ctx context.Context, accountID int64) ([]domain.Message, error) {
	return r.selectMessages(ctx,
		"SELECT "+messageColumns+" FROM message WHERE posted_by = ? ORDER BY message_id", accountID)
}

// Close implements Repository.Close.
// The database handle is shared between repositories and closed by its owner.
func (r *SQLMessageRepository) Close() error {
	return nil
}

func (r *SQLMessageRepository) selectMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	messages := []domain.Message{}

	ext := sqldb.Ext(ctx, r.db)

	if err := sqlx.SelectContext(ctx, ext, &messages, ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query messages: %w", sqldb.TranslateError(err))
	}

	return messages, nil
}
