package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

type DepositCommander interface {
	Deposit(context.Context, cqrs.DepositCommand) (*models.DepositResponse, error)
}

type DepositHandler struct {
	commands DepositCommander
}

func NewDepositHandler(commands DepositCommander) *DepositHandler {
	return &DepositHandler{commands: commands}
}

// RegisterRoutes mounts POST /deposit behind auth.
func (h *DepositHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/deposit", auth, h.Deposit)
}

func (h *DepositHandler) Deposit(c *gin.Context) {
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	resp, err := h.commands.Deposit(c.Request.Context(), cqrs.DepositCommand{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		TellerID:    req.TellerID,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
