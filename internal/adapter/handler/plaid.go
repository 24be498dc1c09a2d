package handler

import (
	"net/http"
	"time"

	"fin-hub/internal/domain"
	"fin-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

const transactionDateLayout = "2006-01-02"

// defaultTransactionCount bounds unpaginated transaction requests.
const defaultTransactionCount int32 = 100

// PlaidHandler handles session-protected account-linking endpoints.
type PlaidHandler struct {
	linkToken    *usecase.CreateLinkToken
	exchange     *usecase.ExchangePublicToken
	transactions *usecase.GetTransactions
	sandbox      *usecase.CreateSandboxItem
	sandboxEnv   bool
}

// NewPlaidHandler creates a new Plaid handler. sandboxEnv gates the
// sandbox seeding endpoint.
func NewPlaidHandler(
	linkToken *usecase.CreateLinkToken,
	exchange *usecase.ExchangePublicToken,
	transactions *usecase.GetTransactions,
	sandbox *usecase.CreateSandboxItem,
	sandboxEnv bool,
) *PlaidHandler {
	return &PlaidHandler{
		linkToken:    linkToken,
		exchange:     exchange,
		transactions: transactions,
		sandbox:      sandbox,
		sandboxEnv:   sandboxEnv,
	}
}

// CreateLinkToken creates a Link token for the current user.
func (h *PlaidHandler) CreateLinkToken(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := domain.UserFromContext(ctx)
	if err != nil {
		return mapDomainError(err)
	}

	token, err := h.linkToken.Execute(ctx, user)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"link_token": token})
}

// exchangeRequest is the public token exchange request body.
type exchangeRequest struct {
	PublicToken     string `json:"public_token" validate:"required"`
	InstitutionName string `json:"institution_name"`
}

// Exchange trades a Link public token for a stored item.
func (h *PlaidHandler) Exchange(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := domain.UserFromContext(ctx)
	if err != nil {
		return mapDomainError(err)
	}

	var req exchangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "public_token is required")
	}

	item, err := h.exchange.Execute(ctx, user, req.PublicToken, req.InstitutionName)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"item_id":          item.ItemID,
		"institution_name": item.InstitutionName,
	})
}

// transactionsRequest is the transaction query request body.
type transactionsRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Count     int32  `json:"count" validate:"omitempty,min=1,max=500"`
}

// Transactions returns the item's transactions for a date range.
func (h *PlaidHandler) Transactions(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := domain.UserFromContext(ctx)
	if err != nil {
		return mapDomainError(err)
	}

	itemID := c.Param("item_id")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id is required")
	}

	var req transactionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must be YYYY-MM-DD")
	}

	start, _ := time.Parse(transactionDateLayout, req.StartDate)
	end, _ := time.Parse(transactionDateLayout, req.EndDate)
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must not precede start_date")
	}

	count := req.Count
	if count == 0 {
		count = defaultTransactionCount
	}

	transactions, err := h.transactions.Execute(ctx, user, itemID, start, end, count)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"transactions": transactions,
	})
}

// sandboxItemRequest is the sandbox item seeding request body.
type sandboxItemRequest struct {
	InstitutionID   string           `json:"institution_id" validate:"required"`
	OverrideHistory []map[string]any `json:"override_history"`
}

// SandboxItem seeds a sandbox item. Refused outright outside the sandbox
// environment.
func (h *PlaidHandler) SandboxItem(c echo.Context) error {
	ctx := c.Request().Context()

	if !h.sandboxEnv {
		return echo.NewHTTPError(http.StatusForbidden, "sandbox endpoints are disabled")
	}

	user, err := domain.UserFromContext(ctx)
	if err != nil {
		return mapDomainError(err)
	}

	var req sandboxItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "institution_id is required")
	}

	item, err := h.sandbox.Execute(ctx, user, req.InstitutionID, req.OverrideHistory)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"item_id": item.ItemID})
}
