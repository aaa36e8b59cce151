package routes

import (
	"net/http"

	"Wildfund/internal/contracts"
	"Wildfund/internal/domain/checkout"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCheckout(c *gin.Context) {
	var body contracts.CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	projectID, err := pkg.ParseULID(body.ProjectID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("project_id", "formato inválido"))
		return
	}

	userID, err := h.optionalUserID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := checkout.Request{
		ProjectId:     projectID,
		UserId:        userID,
		TotalAmount:   body.TotalAmount,
		ProjectAmount: body.ProjectAmount,
		TipAmount:     body.TipAmount,
		CoverFees:     body.CoverFees,
	}

	ctx := c.Request.Context()
	session, err := h.CheckoutService.CreateCheckout(ctx, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.CheckoutResponse{SessionID: session.Id, URL: session.URL})
}
