package query

import (
	"context"

	"github.com/eaglebank/ledger/account-service/internal/repository"
	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
)

type AccountQueryService struct {
	readRepo *repository.AccountReadRepository
}

func NewAccountQueryService(readRepo *repository.AccountReadRepository) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	if !utils.ValidateAccountID(q.AccountID) {
		return nil, apperrors.Validation("invalid account id %q", q.AccountID)
	}
	return s.readRepo.GetByID(ctx, q.AccountID)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.readRepo.ListByUserID(ctx, q.UserID)
}
