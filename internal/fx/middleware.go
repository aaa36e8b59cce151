package fx

import (
	"context"
	"time"

	"Wildfund/internal/middleware"

	"go.uber.org/fx"
)

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newCheckoutRateLimiter,
	),
)

func newCheckoutRateLimiter(lc fx.Lifecycle) *middleware.RateLimiter {
	limiter := middleware.NewRateLimiter(20, time.Minute)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}
