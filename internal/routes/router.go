package routes

import (
	"Wildfund/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register monta as rotas da API. O webhook fica fora do middleware de
// identidade: ele e autenticado pela assinatura.
func (h *Handler) Register(router *gin.Engine, checkoutLimiter *middleware.RateLimiter) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.POST("/webhooks/stripe", h.HandleStripeWebhook)

	identified := api.Group("")
	identified.Use(middleware.Identity())
	{
		identified.POST("/donations/checkout", middleware.RateLimit(checkoutLimiter), h.CreateCheckout)

		identified.GET("/projects", h.ListProjects)
		identified.GET("/projects/:id", h.GetProject)
		identified.GET("/projects/:id/progress", h.GetProjectProgress)
	}

	private := api.Group("")
	private.Use(middleware.Identity(), middleware.RequireUser())
	{
		users := private.Group("/users")
		{
			users.POST("", h.RegisterUser)
			users.GET("/me", h.GetCurrentUser)
		}

		projects := private.Group("/projects")
		{
			projects.POST("", h.CreateProject)
			projects.PATCH("/:id", h.UpdateProject)
			projects.POST("/:id/complete", h.CompleteProject)
			projects.GET("/:id/donations", h.ListProjectDonations)
		}
	}
}
