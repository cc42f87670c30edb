package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	ApplyDelta(context.Context, cqrs.ApplyDeltaCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
}

// AccountHandler exposes the account service to the gateway and the
// orchestrators. Requests relayed by the gateway carry X-User-ID and may only
// see the caller's own accounts; internal calls carry no header.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	accounts := r.Group("/accounts")
	accounts.POST("/create", h.CreateAccount)
	accounts.GET("/user/:userId", h.ListAccounts)
	accounts.GET("/:accountId", h.GetAccount)
	accounts.PUT("/:accountId/balance", h.UpdateBalance)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if callerMismatch(c, req.UserID) {
		middleware.RespondWithAppError(c, fmt.Errorf("cannot open an account for another user: %w", apperrors.ErrUnauthorized))
		return
	}

	cmd := cqrs.CreateAccountCommand{
		UserID:      req.UserID,
		AccountType: req.AccountType,
	}
	if req.InitialBalance != nil {
		cmd.InitialBalance = *req.InitialBalance
	}
	account, err := h.commands.CreateAccount(c.Request.Context(), cmd)
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// callerMismatch reports whether a gateway caller is asking for someone
// else's data.
func callerMismatch(c *gin.Context, ownerID string) bool {
	caller := c.GetHeader(middleware.UserIDHeader)
	return caller != "" && caller != ownerID
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID := c.Param("userId")
	if callerMismatch(c, userID) {
		middleware.RespondWithAppError(c, fmt.Errorf("cannot list accounts of another user: %w", apperrors.ErrUnauthorized))
		return
	}
	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: c.Param("accountId")})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	if callerMismatch(c, account.OwnerID) {
		middleware.RespondWithAppError(c, fmt.Errorf("not account owner: %w", apperrors.ErrUnauthorized))
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateBalance applies a signed delta: {"amount": "-25.00"} debits.
func (h *AccountHandler) UpdateBalance(c *gin.Context) {
	var req models.UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil {
		middleware.RespondWithAppError(c, apperrors.Validation("amount is required"))
		return
	}

	account, err := h.commands.ApplyDelta(c.Request.Context(), cqrs.ApplyDeltaCommand{
		AccountID: c.Param("accountId"),
		Delta:     *req.Amount,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
