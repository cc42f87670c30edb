package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// AccountClient talks to the account service.
type AccountClient struct {
	baseClient
}

func NewAccountClient(baseURL string, timeout time.Duration) *AccountClient {
	return &AccountClient{baseClient: newBaseClient(baseURL, timeout)}
}

func (c *AccountClient) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account
	if err := c.doJSON(ctx, http.MethodGet, "/accounts/"+url.PathEscape(accountID), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ApplyDelta is not retried: a failure may or may not have been applied
// remotely and the caller must treat it as such.
func (c *AccountClient) ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) (*models.Account, error) {
	var account models.Account
	body := models.UpdateBalanceRequest{Amount: &delta}
	if err := c.doJSON(ctx, http.MethodPut, "/accounts/"+url.PathEscape(accountID)+"/balance", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
