package socialsvc_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
	"github.com/mkrupp/socialsvc/internal/svc/socialsvc"
)

var ErrRepoError = errors.New("repository error")

// mockAccountRepository implements account.Repository for testing.
type mockAccountRepository struct {
	accounts map[int64]domain.Account
	nextID   int64
	err      error
	saveErr  error
	m        sync.Mutex
}

func newMockAccountRepo(accounts ...domain.Account) *mockAccountRepository {
	repo := &mockAccountRepository{accounts: make(map[int64]domain.Account)}

	for _, acc := range accounts {
		repo.accounts[acc.ID] = acc
		repo.nextID = max(repo.nextID, acc.ID)
	}

	return repo
}

func (m *mockAccountRepository) find(match func(domain.Account) bool) (*domain.Account, bool) {
	for _, acc := range m.accounts {
		if match(acc) {
			return &acc, true
		}
	}

	return nil, false
}

func (m *mockAccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return false, m.err
	}
	_, ok := m.find(func(a domain.Account) bool { return a.Username == username })
	return ok, nil
}

func (m *mockAccountRepository) FindByUsernameAndPassword(
	_ context.Context, username, password string,
) (*domain.Account, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	acc, ok := m.find(func(a domain.Account) bool { return a.Username == username && a.Password == password })
	return acc, ok, nil
}

func (m *mockAccountRepository) ExistsByUsernameAndPassword(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := m.FindByUsernameAndPassword(ctx, username, password)
	return ok, err
}

func (m *mockAccountRepository) Save(_ context.Context, acc domain.Account) (*domain.Account, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.nextID++
	acc.ID = m.nextID
	m.accounts[acc.ID] = acc
	return &acc, nil
}

func (m *mockAccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	acc, ok := m.accounts[id]
	if !ok {
		return nil, false, nil
	}
	return &acc, true, nil
}

func (m *mockAccountRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok, err := m.FindByID(ctx, id)
	return ok, err
}

func (m *mockAccountRepository) DeleteByID(_ context.Context, id int64) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.accounts[id]; !ok {
		return 0, nil
	}
	delete(m.accounts, id)
	return 1, nil
}

func (m *mockAccountRepository) FindAll(context.Context) ([]domain.Account, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	accounts := make([]domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	slices.SortFunc(accounts, func(a, b domain.Account) int { return int(a.ID - b.ID) })
	return accounts, nil
}

func (m *mockAccountRepository) Close() error {
	return nil
}

// mockMessageRepository implements message.Repository for testing.
type mockMessageRepository struct {
	messages map[int64]domain.Message
	nextID   int64
	err      error
	saveErr  error
	m        sync.Mutex
}

func newMockMessageRepo(messages ...domain.Message) *mockMessageRepository {
	repo := &mockMessageRepository{messages: make(map[int64]domain.Message)}

	for _, msg := range messages {
		repo.messages[msg.ID] = msg
		repo.nextID = max(repo.nextID, msg.ID)
	}

	return repo
}

func (m *mockMessageRepository) Save(_ context.Context, msg domain.Message) (*domain.Message, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if msg.ID == 0 {
		m.nextID++
		msg.ID = m.nextID
	} else if _, ok := m.messages[msg.ID]; !ok {
		return nil, domain.NewError(domain.ErrDataIntegrity, "no row")
	}
	m.messages[msg.ID] = msg
	return &msg, nil
}

func (m *mockMessageRepository) FindByID(_ context.Context, id int64) (*domain.Message, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, false, nil
	}
	return &msg, true, nil
}

func (m *mockMessageRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok, err := m.FindByID(ctx, id)
	return ok, err
}

func (m *mockMessageRepository) DeleteByID(_ context.Context, id int64) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.messages[id]; !ok {
		return 0, nil
	}
	delete(m.messages, id)
	return 1, nil
}

func (m *mockMessageRepository) FindAll(context.Context) ([]domain.Message, error) {
	return m.filter(func(domain.Message) bool { return true })
}

func (m *mockMessageRepository) FindByPostedBy(_ context.Context, accountID int64) ([]domain.Message, error) {
	return m.filter(func(msg domain.Message) bool { return msg.PostedBy == accountID })
}

func (m *mockMessageRepository) filter(match func(domain.Message) bool) ([]domain.Message, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	messages := []domain.Message{}
	for _, msg := range m.messages {
		if match(msg) {
			messages = append(messages, msg)
		}
	}
	slices.SortFunc(messages, func(a, b domain.Message) int { return int(a.ID - b.ID) })
	return messages, nil
}

func (m *mockMessageRepository) Close() error {
	return nil
}

// mockTransactor implements sqldb.Transactor by running fn directly.
type mockTransactor struct {
	isolations []sqldb.Isolation
	m          sync.Mutex
}

func (m *mockTransactor) InTx(ctx context.Context, isolation sqldb.Isolation, fn func(ctx context.Context) error) error {
	m.m.Lock()
	m.isolations = append(m.isolations, isolation)
	m.m.Unlock()

	return fn(ctx)
}

type testServices struct {
	accountRepo *mockAccountRepository
	messageRepo *mockMessageRepository
	tx          *mockTransactor
	validator   *socialsvc.Validator
	accounts    *socialsvc.AccountService
	messages    *socialsvc.MessageService
}

func setupTestServices(accountRepo *mockAccountRepository, messageRepo *mockMessageRepository) testServices {
	tx := &mockTransactor{}
	validator := socialsvc.NewValidator(accountRepo, messageRepo)
	log := logging.NewNopLogger()

	return testServices{
		accountRepo: accountRepo,
		messageRepo: messageRepo,
		tx:          tx,
		validator:   validator,
		accounts:    socialsvc.NewAccountService(accountRepo, validator, tx, log),
		messages:    socialsvc.NewMessageService(messageRepo, validator, tx, log),
	}
}

func ptr[T any](v T) *T {
	return &v
}
