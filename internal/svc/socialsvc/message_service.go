package socialsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/repo/message"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
)

// RowsAffected is the result reported for a successful update or deletion.
const RowsAffected = 1

// MessageService provides posting, reading, editing and deleting messages.
type MessageService struct {
	Messages  message.Repository
	Validator *Validator
	Tx        sqldb.Transactor
	Log       logging.Logger

	// Now stamps messages posted without a time; defaults to time.Now
	Now func() time.Time
}

// NewMessageService creates a new MessageService.
func NewMessageService(
	messages message.Repository,
	validator *Validator,
	tx sqldb.Transactor,
	log logging.Logger,
) *MessageService {
	return &MessageService{
		Messages:  messages,
		Validator: validator,
		Tx:        tx,
		Log:       log,
		Now:       time.Now,
	}
}

// Post validates and stores a new message.
// A message without timePostedEpoch is stamped with the current Unix time.
func (s *MessageService) Post(ctx context.Context, candidate *domain.MessageCandidate) (_ *domain.Message, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "post message failed", "error", err)
		} else {
			log.InfoContext(ctx, "message posted")
		}
	}()

	var saved *domain.Message

	err = s.Tx.InTx(ctx, sqldb.IsolationDefault, func(ctx context.Context) error {
		msg, err := s.Validator.ValidateNewMessage(ctx, candidate)
		if err != nil {
			return err
		}

		if msg.TimePostedEpoch == nil {
			now := s.Now().Unix()
			msg.TimePostedEpoch = &now
		}

		saved, err = s.Messages.Save(ctx, msg)
		if err != nil {
			if errors.Is(err, domain.ErrStorageForeignKey) {
				return unknownAuthor(msg.PostedBy).WithCause(err)
			}

			return fmt.Errorf("save message: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log = log.With(logging.Group("message", "id", saved.ID, "posted_by", saved.PostedBy))

	return saved, nil
}

// ListMessages returns every message.
func (s *MessageService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	messages, err := s.Messages.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	return messages, nil
}

// GetMessage returns the message with the ID.
// Returns nil and false if there is none.
func (s *MessageService) GetMessage(ctx context.Context, id int64) (*domain.Message, bool, error) {
	id, err := s.Validator.ValidateMessageLookup(&id)
	if err != nil {
		return nil, false, err
	}

	found, ok, err := s.Messages.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("find message: %w", err)
	}

	return found, ok, nil
}

// UpdateMessage replaces the text of an existing message and returns RowsAffected.
func (s *MessageService) UpdateMessage(ctx context.Context, id int64, text *string) (_ int, err error) {
	log := s.Log.With(logging.Group("message", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "update message failed", "error", err)
		} else {
			log.InfoContext(ctx, "message updated")
		}
	}()

	err = s.Tx.InTx(ctx, sqldb.IsolationDefault, func(ctx context.Context) error {
		msg, err := s.Validator.ValidateMessageUpdate(ctx, &id, text)
		if err != nil {
			return err
		}

		if _, err := s.Messages.Save(ctx, msg); err != nil {
			return fmt.Errorf("save message: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return RowsAffected, nil
}

// DeleteMessage removes an existing message and returns RowsAffected.
// Deleting an unknown message is a rejected request.
func (s *MessageService) DeleteMessage(ctx context.Context, id int64) (_ int, err error) {
	log := s.Log.With(logging.Group("message", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "delete message failed", "error", err)
		} else {
			log.InfoContext(ctx, "message deleted")
		}
	}()

	err = s.Tx.InTx(ctx, sqldb.IsolationDefault, func(ctx context.Context) error {
		id, err := s.Validator.ValidateMessageDeletion(ctx, &id)
		if err != nil {
			return err
		}

		n, err := s.Messages.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete message: %w", err)
		}

		if n == 0 {
			return missingMessage(id, "deletion")
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return RowsAffected, nil
}

// ListMessagesByAccount returns the messages posted by an existing account.
func (s *MessageService) ListMessagesByAccount(ctx context.Context, accountID int64) ([]domain.Message, error) {
	accountID, err := s.Validator.ValidateAccountMessagesLookup(ctx, &accountID)
	if err != nil {
		return nil, err
	}

	messages, err := s.Messages.FindByPostedBy(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	return messages, nil
}

// Close releases the repositories held by the service.
func (s *MessageService) Close() error {
	if err := s.Messages.Close(); err != nil {
		return fmt.Errorf("close message repo: %w", err)
	}

	return nil
}
