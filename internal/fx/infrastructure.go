package fx

import (
	"context"

	"Wildfund/config"
	"Wildfund/internal/domain/ledger"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/domain/webhook"
	"Wildfund/internal/infrastructure"
	"Wildfund/internal/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stripe/stripe-go/v74/client"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newUserRepository,
		newProjectRepository,
		newDonationRepository,
		newTransactor,
		newStripeClient,
		newStripeGateway,
		newKafkaProducer,
		newDonationPublisher,
		newStatusObservers,
		newEventArchiver,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Fechando conexão com o banco de dados")
			return infrastructure.CloseDb(db)
		},
	})
	return db, nil
}

func newUserRepository(db *gorm.DB) *infrastructure.UserRepository {
	return &infrastructure.UserRepository{DB: db}
}

func newProjectRepository(db *gorm.DB) *infrastructure.ProjectRepository {
	return &infrastructure.ProjectRepository{DB: db}
}

func newDonationRepository(db *gorm.DB) *infrastructure.DonationRepository {
	return &infrastructure.DonationRepository{DB: db}
}

func newTransactor(db *gorm.DB) *infrastructure.GormTransactor {
	return infrastructure.NewGormTransactor(db)
}

func newStripeClient(cfg *config.Config) *client.API {
	return infrastructure.NewStripeClient(cfg)
}

func newStripeGateway(api *client.API, cfg *config.Config) *infrastructure.StripeGateway {
	return infrastructure.NewStripeGateway(api, cfg)
}

// newKafkaProducer devolve nil quando KAFKA_BOOTSTRAP_SERVERS nao esta definido.
func newKafkaProducer(lc fx.Lifecycle, cfg *config.Config) (*kafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		logger.Info().Msg("Kafka desabilitado, eventos do ledger nao serao publicados")
		return nil, nil
	}

	producer, err := infrastructure.NewKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			remaining := producer.Flush(5000)
			if remaining > 0 {
				logger.Warn().Int("pending", remaining).Msg("Mensagens Kafka nao entregues no encerramento")
			}
			producer.Close()
			return nil
		},
	})
	return producer, nil
}

type publisherResult struct {
	fx.Out

	Donations ledger.DonationPublisher
	Kafka     *infrastructure.KafkaPublisher
}

// newDonationPublisher mantem a interface nil quando o Kafka esta desabilitado,
// para que o ledger apenas pule a publicacao.
func newDonationPublisher(producer *kafka.Producer, cfg *config.Config) publisherResult {
	if producer == nil {
		return publisherResult{}
	}
	publisher := infrastructure.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	return publisherResult{Donations: publisher, Kafka: publisher}
}

type StatusObservers struct {
	Observers []project.StatusObserver
}

func newStatusObservers(
	lc fx.Lifecycle,
	cfg *config.Config,
	users *infrastructure.UserRepository,
	publisher *infrastructure.KafkaPublisher,
) (StatusObservers, error) {
	var observers []project.StatusObserver
	if publisher != nil {
		observers = append(observers, publisher)
	}
	if !cfg.SMTPEnabled() {
		logger.Info().Msg("SMTP desabilitado, donos nao serao notificados por e-mail")
		return StatusObservers{Observers: observers}, nil
	}

	mailer, err := infrastructure.NewOwnerMailer(users, cfg)
	if err != nil {
		return StatusObservers{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mailer.Close(ctx)
		},
	})
	return StatusObservers{Observers: append(observers, mailer)}, nil
}

func newEventArchiver(cfg *config.Config) (webhook.EventArchiver, error) {
	if !cfg.ArchiveEnabled() {
		logger.Info().Msg("Arquivo de eventos em S3 desabilitado")
		return nil, nil
	}

	s3Client, err := infrastructure.NewS3Client(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return infrastructure.NewEventArchive(s3Client, cfg), nil
}
