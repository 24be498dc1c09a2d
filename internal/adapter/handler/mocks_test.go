package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"fin-hub/internal/domain"
	"fin-hub/utils/validator"

	"github.com/labstack/echo/v4"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withUser is a test stand-in for the session middleware.
func withUser(c echo.Context, user *domain.LocalUser) {
	ctx := domain.WithUser(c.Request().Context(), user)
	c.SetRequest(c.Request().WithContext(ctx))
}

// withClaims is a test stand-in for the bearer middleware.
func withClaims(c echo.Context, claims *domain.BearerClaims) {
	ctx := domain.WithBearerClaims(c.Request().Context(), claims)
	c.SetRequest(c.Request().WithContext(ctx))
}

type mockExchanger struct {
	identity *domain.Identity
	err      error
}

func (m *mockExchanger) Exchange(_ context.Context, _, _ string) (*domain.Identity, error) {
	return m.identity, m.err
}

type mockUserRepo struct {
	users map[string]*domain.LocalUser
}

func newMockUserRepo(users ...*domain.LocalUser) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*domain.LocalUser{}}
	for _, u := range users {
		m.users[u.Subject] = u
	}
	return m
}

func (m *mockUserRepo) FindBySubject(_ context.Context, subject string) (*domain.LocalUser, error) {
	if u, ok := m.users[subject]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.LocalUser) error {
	if _, ok := m.users[user.Subject]; ok {
		return domain.ErrUserExists
	}
	m.users[user.Subject] = user
	return nil
}

type mockSessionCodec struct {
	token string
	err   error
}

func (m *mockSessionCodec) Issue(_ string, _ map[string]any) (string, error) {
	return m.token, m.err
}

func (m *mockSessionCodec) Validate(_ string) (*domain.SessionClaims, error) {
	return nil, domain.ErrSessionInvalid
}

func (m *mockSessionCodec) TTL() time.Duration { return 30 * time.Minute }

type mockItemRepo struct {
	items map[string]*domain.PlaidItem
}

func newMockItemRepo(items ...*domain.PlaidItem) *mockItemRepo {
	m := &mockItemRepo{items: map[string]*domain.PlaidItem{}}
	for _, i := range items {
		m.items[i.ItemID] = i
	}
	return m
}

func (m *mockItemRepo) FindByItemID(_ context.Context, itemID string) (*domain.PlaidItem, error) {
	if i, ok := m.items[itemID]; ok {
		return i, nil
	}
	return nil, domain.ErrItemNotFound
}

func (m *mockItemRepo) Upsert(_ context.Context, item *domain.PlaidItem) error {
	m.items[item.ItemID] = item
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

func (m *mockLinker) GetTransactions(_ context.Context, _ string, _, _ time.Time, _ int32) ([]domain.Transaction, error) {
	return m.transactions, m.txErr
}

func (m *mockLinker) CreateSandboxPublicToken(_ context.Context, _ string, _ []map[string]any) (string, error) {
	return m.publicToken, m.sandboxErr
}

type mockCipher struct{}

func (mockCipher) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (mockCipher) Decrypt(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}
