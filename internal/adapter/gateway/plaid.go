package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fin-hub/internal/domain"

	"github.com/plaid/plaid-go/v31/plaid"
)

const plaidDateLayout = "2006-01-02"

// PlaidGateway is the financial-data aggregator boundary. Implements
// domain.AccountLinker.
type PlaidGateway struct {
	client     *plaid.APIClient
	clientName string
}

// NewPlaidGateway creates an aggregator client for the given environment.
// Unknown environment names fall back to sandbox so a misconfigured deploy
// can never hit production data.
func NewPlaidGateway(clientID, secret, env string) *PlaidGateway {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)
	configuration.UseEnvironment(plaidEnvironment(env))

	return &PlaidGateway{
		client:     plaid.NewAPIClient(configuration),
		clientName: "fin-hub",
	}
}

func plaidEnvironment(env string) plaid.Environment {
	if env == "production" {
		return plaid.Production
	}
	return plaid.Sandbox
}

// CreateLinkToken creates a Link token bound to the given subject.
func (g *PlaidGateway) CreateLinkToken(ctx context.Context, subject string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{ClientUserId: subject}
	request := plaid.NewLinkTokenCreateRequest(g.clientName, "en", []plaid.CountryCode{plaid.COUNTRYCODE_US}, user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, httpResp, err := g.client.PlaidApi.LinkTokenCreate(ctx).
		LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", mapPlaidError(httpResp, err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades a Link public token for the permanent item
// credentials. The returned access token is plaintext; callers encrypt it
// before storage.
func (g *PlaidGateway) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, httpResp, err := g.client.PlaidApi.ItemPublicTokenExchange(ctx).
		ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", mapPlaidError(httpResp, err)
	}
	return resp.GetItemId(), resp.GetAccessToken(), nil
}

// GetTransactions fetches transactions for the item in the date range.
func (g *PlaidGateway) GetTransactions(ctx context.Context, accessToken string, start, end time.Time, count int32) ([]domain.Transaction, error) {
	request := plaid.NewTransactionsGetRequest(accessToken, start.Format(plaidDateLayout), end.Format(plaidDateLayout))
	request.SetOptions(plaid.TransactionsGetRequestOptions{
		Count: plaid.PtrInt32(count),
	})

	resp, httpResp, err := g.client.PlaidApi.TransactionsGet(ctx).
		TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, mapPlaidError(httpResp, err)
	}

	transactions := make([]domain.Transaction, 0, len(resp.GetTransactions()))
	for _, tx := range resp.GetTransactions() {
		transactions = append(transactions, domain.Transaction{
			TransactionID: tx.GetTransactionId(),
			AccountID:     tx.GetAccountId(),
			Name:          tx.GetName(),
			Amount:        tx.GetAmount(),
			ISOCurrency:   tx.GetIsoCurrencyCode(),
			Date:          tx.GetDate(),
			Categories:    tx.GetCategory(),
			Pending:       tx.GetPending(),
		})
	}
	return transactions, nil
}

// CreateSandboxPublicToken seeds a sandbox item. A non-empty override history
// is passed through the sandbox custom-user mechanism so tests can dictate
// the exact transactions the item reports.
func (g *PlaidGateway) CreateSandboxPublicToken(ctx context.Context, institutionID string, overrideHistory []map[string]any) (string, error) {
	request := plaid.NewSandboxPublicTokenCreateRequest(institutionID, []plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	if len(overrideHistory) > 0 {
		userConfig, err := json.Marshal(map[string]any{
			"override_accounts": []map[string]any{{
				"type":         "depository",
				"subtype":      "checking",
				"transactions": overrideHistory,
			}},
		})
		if err != nil {
			return "", fmt.Errorf("%w: encode override history: %w", domain.ErrAggregatorRejected, err)
		}

		options := plaid.SandboxPublicTokenCreateRequestOptions{}
		options.SetOverrideUsername("user_custom")
		options.SetOverridePassword(string(userConfig))
		request.SetOptions(options)
	}

	resp, httpResp, err := g.client.PlaidApi.SandboxPublicTokenCreate(ctx).
		SandboxPublicTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", mapPlaidError(httpResp, err)
	}
	return resp.GetPublicToken(), nil
}

// mapPlaidError folds aggregator failures into the domain taxonomy: client
// mistakes (bad tokens, unknown institutions) are rejections, everything
// else is upstream unavailability.
func mapPlaidError(httpResp *http.Response, err error) error {
	if httpResp != nil && httpResp.StatusCode >= 400 && httpResp.StatusCode < 500 {
		if plaidErr, convErr := plaid.ToPlaidError(err); convErr == nil {
			return fmt.Errorf("%w: %s/%s", domain.ErrAggregatorRejected, plaidErr.GetErrorType(), plaidErr.GetErrorCode())
		}
		return fmt.Errorf("%w: %w", domain.ErrAggregatorRejected, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrAggregatorUnavailable, err)
}
