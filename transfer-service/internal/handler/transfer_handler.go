package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

type TransferCommander interface {
	Transfer(context.Context, cqrs.TransferCommand) (*models.TransferResponse, error)
}

type TransferHandler struct {
	commands TransferCommander
}

func NewTransferHandler(commands TransferCommander) *TransferHandler {
	return &TransferHandler{commands: commands}
}

// RegisterRoutes mounts POST /transfer behind auth.
func (h *TransferHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/transfer", auth, h.Transfer)
}

// Transfer takes the caller from the verified token; the body carries no
// user id.
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	resp, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Pin:           req.Pin,
		CallerUserID:  userID,
		Description:   req.Description,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
