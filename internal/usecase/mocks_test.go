package usecase

import (
	"context"
	"time"

	"fin-hub/internal/domain"
)

// Hand-written port mocks shared by the usecase tests.

type mockExchanger struct {
	identity *domain.Identity
	err      error
	called   bool
	gotCode  string
}

func (m *mockExchanger) Exchange(_ context.Context, code, _ string) (*domain.Identity, error) {
	m.called = true
	m.gotCode = code
	return m.identity, m.err
}

type mockUserRepo struct {
	users     map[string]*domain.LocalUser
	findErr   error
	createErr error
	created   []*domain.LocalUser
}

func newMockUserRepo(users ...*domain.LocalUser) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*domain.LocalUser{}}
	for _, u := range users {
		m.users[u.Subject] = u
	}
	return m
}

func (m *mockUserRepo) FindBySubject(_ context.Context, subject string) (*domain.LocalUser, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[subject]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.LocalUser) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Subject]; ok {
		return domain.ErrUserExists
	}
	m.users[user.Subject] = user
	m.created = append(m.created, user)
	return nil
}

type mockSessionCodec struct {
	token       string
	issueErr    error
	claims      *domain.SessionClaims
	validateErr error
	gotSubject  string
	gotExtra    map[string]any
}

func (m *mockSessionCodec) Issue(subject string, extra map[string]any) (string, error) {
	m.gotSubject = subject
	m.gotExtra = extra
	return m.token, m.issueErr
}

func (m *mockSessionCodec) Validate(_ string) (*domain.SessionClaims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.claims, nil
}

func (m *mockSessionCodec) TTL() time.Duration { return 30 * time.Minute }

type mockItemRepo struct {
	items     map[string]*domain.PlaidItem
	findErr   error
	upsertErr error
	upserted  []*domain.PlaidItem
}

func newMockItemRepo(items ...*domain.PlaidItem) *mockItemRepo {
	m := &mockItemRepo{items: map[string]*domain.PlaidItem{}}
	for _, i := range items {
		m.items[i.ItemID] = i
	}
	return m
}

func (m *mockItemRepo) FindByItemID(_ context.Context, itemID string) (*domain.PlaidItem, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if i, ok := m.items[itemID]; ok {
		return i, nil
	}
	return nil, domain.ErrItemNotFound
}

func (m *mockItemRepo) Upsert(_ context.Context, item *domain.PlaidItem) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.items[item.ItemID] = item
	m.upserted = append(m.upserted, item)
	return nil
}

type mockLinker struct {
	linkToken    string
	linkErr      error
	itemID       string
	accessToken  string
	exchangeErr  error
	transactions []domain.Transaction
	txErr        error
	publicToken  string
	sandboxErr   error

	gotAccessToken string
	gotStart       time.Time
	gotEnd         time.Time
	gotCount       int32
	gotOverride    []map[string]any
}

func (m *mockLinker) CreateLinkToken(_ context.Context, _ string) (string, error) {
	return m.linkToken, m.linkErr
}

func (m *mockLinker) ExchangePublicToken(_ context.Context, _ string) (string, string, error) {
	if m.exchangeErr != nil {
		return "", "", m.exchangeErr
	}
	return m.itemID, m.accessToken, nil
}

func (m *mockLinker) GetTransactions(_ context.Context, accessToken string, start, end time.Time, count int32) ([]domain.Transaction, error) {
	m.gotAccessToken = accessToken
	m.gotStart = start
	m.gotEnd = end
	m.gotCount = count
	return m.transactions, m.txErr
}

func (m *mockLinker) CreateSandboxPublicToken(_ context.Context, _ string, overrideHistory []map[string]any) (string, error) {
	m.gotOverride = overrideHistory
	return m.publicToken, m.sandboxErr
}

type mockCipher struct {
	encryptErr error
	decryptErr error
}

func (m *mockCipher) Encrypt(plaintext string) (string, error) {
	if m.encryptErr != nil {
		return "", m.encryptErr
	}
	return "enc:" + plaintext, nil
}

func (m *mockCipher) Decrypt(ciphertext string) (string, error) {
	if m.decryptErr != nil {
		return "", m.decryptErr
	}
	return ciphertext[len("enc:"):], nil
}
