package fx

import (
	"Wildfund/internal/domain/checkout"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/domain/user"
	"Wildfund/internal/domain/webhook"
	"Wildfund/internal/infrastructure"
	"Wildfund/internal/routes"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// RoutesModule fornece o handler HTTP
var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
	),
)

func newHandler(
	db *gorm.DB,
	userSvc *user.Service,
	projectSvc *project.Service,
	checkoutSvc *checkout.Service,
	verifier *webhook.Verifier,
	dispatcher *webhook.Dispatcher,
	donationRepo *infrastructure.DonationRepository,
) (*routes.Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	return &routes.Handler{
		UserService:        userSvc,
		ProjectService:     projectSvc,
		CheckoutService:    checkoutSvc,
		Verifier:           verifier,
		Dispatcher:         dispatcher,
		DonationRepository: donationRepo,
		DatabaseCheck:      sqlDB.PingContext,
	}, nil
}
