package routes

import (
	"context"

	"Wildfund/internal/domain/checkout"
	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/domain/user"
	"Wildfund/internal/domain/webhook"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"
	"Wildfund/internal/middleware"
	"Wildfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

type HealthCheck func(ctx context.Context) error

type Handler struct {
	UserService     *user.Service
	ProjectService  *project.Service
	CheckoutService *checkout.Service
	Verifier        *webhook.Verifier
	Dispatcher      *webhook.Dispatcher

	DonationRepository donation.Repository
	DatabaseCheck      HealthCheck
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (ulid.ULID, error) {
	userIDStr, exists := c.Get(middleware.UserIDContext)
	if !exists {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}

	userID, err := pkg.ParseULID(userIDStr.(string))
	if err != nil {
		return ulid.ULID{}, appErrors.ErrUnauthorized.WithError(err)
	}

	return userID, nil
}

// optionalUserID devolve nil para requisicoes anonimas.
func (h *Handler) optionalUserID(c *gin.Context) (*ulid.ULID, error) {
	if _, exists := c.Get(middleware.UserIDContext); !exists {
		return nil, nil
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

func (h *Handler) parseIDParam(c *gin.Context, name string) (ulid.ULID, error) {
	raw := c.Param(name)
	if raw == "" {
		return ulid.ULID{}, appErrors.NewValidationError(name, "é obrigatório")
	}
	id, err := pkg.ParseULID(raw)
	if err != nil {
		return ulid.ULID{}, appErrors.NewValidationError(name, "formato inválido")
	}
	return id, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	var pageNum, limitNum int
	if p, err := pkg.ParseInt(page); err == nil && p > 0 {
		pageNum = p
	} else {
		pageNum = 1
	}

	if l, err := pkg.ParseInt(limit); err == nil && l > 0 {
		limitNum = l
	} else {
		limitNum = 10
	}

	return &pkg.PaginationParams{
		Page:  pageNum,
		Limit: limitNum,
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	event := logger.Error().Str("code", appErr.Code).Str("path", c.FullPath())
	if appErr.StatusCode < 500 {
		event = logger.Warn().Str("code", appErr.Code).Str("path", c.FullPath())
	}
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")
	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}
