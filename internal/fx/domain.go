package fx

import (
	"Wildfund/config"
	"Wildfund/internal/domain/checkout"
	"Wildfund/internal/domain/ledger"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/domain/shared"
	"Wildfund/internal/domain/user"
	"Wildfund/internal/domain/webhook"
	"Wildfund/internal/infrastructure"

	"go.uber.org/fx"
)

// DomainModule fornece os services do dominio
var DomainModule = fx.Module("domain",
	fx.Provide(
		newUserService,
		newUserCheckerService,
		newProjectService,
		newEnricher,
		newLedgerWriter,
		newCheckoutService,
		newVerifier,
		newDispatcher,
	),
)

func newUserService(repo *infrastructure.UserRepository) *user.Service {
	return user.NewService(repo)
}

func newUserCheckerService(userSvc *user.Service) *shared.UserCheckerService {
	return shared.NewUserCheckerService(userSvc)
}

func newProjectService(
	repo *infrastructure.ProjectRepository,
	userChecker *shared.UserCheckerService,
	observers StatusObservers,
) *project.Service {
	svc := project.NewService(repo, observers.Observers...)
	svc.Owners = userChecker
	return svc
}

func newEnricher(
	repo *infrastructure.DonationRepository,
	gateway *infrastructure.StripeGateway,
	cfg *config.Config,
) *ledger.Enricher {
	return ledger.NewEnricher(repo, gateway, cfg.Stripe.APITimeout)
}

func newLedgerWriter(
	projectRepo *infrastructure.ProjectRepository,
	donationRepo *infrastructure.DonationRepository,
	transactor *infrastructure.GormTransactor,
	projectSvc *project.Service,
	enricher *ledger.Enricher,
	publisher ledger.DonationPublisher,
) *ledger.Writer {
	return ledger.NewWriter(projectRepo, donationRepo, transactor, projectSvc, enricher, publisher)
}

func newCheckoutService(
	projectSvc *project.Service,
	gateway *infrastructure.StripeGateway,
	userChecker *shared.UserCheckerService,
	cfg *config.Config,
) *checkout.Service {
	svc := checkout.NewService(projectSvc, gateway, checkout.Options{
		MinimumAmount:    cfg.Checkout.MinimumAmount,
		AllowAnonymous:   cfg.Checkout.AllowAnonymous,
		DescriptionLimit: cfg.Checkout.DescriptionLimit,
		Currency:         cfg.Stripe.Currency,
	})
	svc.Donors = userChecker
	return svc
}

func newVerifier(cfg *config.Config) *webhook.Verifier {
	return webhook.NewVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance)
}

func newDispatcher(
	writer *ledger.Writer,
	enricher *ledger.Enricher,
	archive webhook.EventArchiver,
) *webhook.Dispatcher {
	return webhook.NewDispatcher(writer, enricher, archive)
}
