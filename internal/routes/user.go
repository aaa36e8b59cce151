package routes

import (
	"net/http"

	"Wildfund/internal/contracts"
	"Wildfund/internal/domain/user"
	appErrors "Wildfund/internal/errors"

	"github.com/gin-gonic/gin"
)

// RegisterUser grava o perfil do usuario ja autenticado pelo gateway.
func (h *Handler) RegisterUser(c *gin.Context) {
	var body contracts.UserCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	entity, err := h.UserService.Register(ctx, &user.CreateRequest{
		Id:    userID,
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.UserResponse{User: entity})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	entity, err := h.UserService.GetByID(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.UserResponse{User: entity})
}
