package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

// TransactionClient talks to the transaction log service.
type TransactionClient struct {
	baseClient
}

func NewTransactionClient(baseURL string, timeout time.Duration) *TransactionClient {
	return &TransactionClient{baseClient: newBaseClient(baseURL, timeout)}
}

func (c *TransactionClient) LogTransaction(ctx context.Context, cmd cqrs.LogTransactionCommand) (*models.Transaction, error) {
	body := models.LogTransactionRequest{
		AccountID:        cmd.AccountID,
		TransactionType:  cmd.Type,
		Amount:           cmd.Amount,
		RelatedAccountID: cmd.RelatedAccountID,
		Description:      cmd.Description,
	}
	var txn models.Transaction
	if err := c.doJSON(ctx, http.MethodPost, "/transactions", body, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
