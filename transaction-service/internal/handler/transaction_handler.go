package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	LogTransaction(context.Context, cqrs.LogTransactionCommand) (*models.Transaction, error)
}

type TransactionHandler struct {
	commands TransactionCommander
}

func NewTransactionHandler(commands TransactionCommander) *TransactionHandler {
	return &TransactionHandler{commands: commands}
}

func (h *TransactionHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/transactions", h.LogTransaction)
}

func (h *TransactionHandler) LogTransaction(c *gin.Context) {
	var req models.LogTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.LogTransaction(c.Request.Context(), cqrs.LogTransactionCommand{
		AccountID:        req.AccountID,
		Type:             req.TransactionType,
		Amount:           req.Amount,
		RelatedAccountID: req.RelatedAccountID,
		Description:      req.Description,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}
