package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Wildfund/config"
	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/logger"
	"Wildfund/internal/pkg"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	EventDonationCompleted    = "donation.completed"
	EventProjectStatusChanged = "project.status_changed"
)

type messageProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// KafkaPublisher publica eventos do ledger com chave pelo projeto, o que
// mantem a ordem por projeto dentro da particao.
type KafkaPublisher struct {
	producer messageProducer
	topic    string
	timeout  time.Duration
}

type LedgerEvent struct {
	Type       string           `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	ProjectId  string           `json:"project_id"`
	Donation   *DonationPayload `json:"donation,omitempty"`
	Status     *StatusPayload   `json:"status,omitempty"`
}

type DonationPayload struct {
	Id                string  `json:"id"`
	CheckoutSessionId string  `json:"checkout_session_id"`
	UserId            *string `json:"user_id,omitempty"`
	AmountTotal       int64   `json:"amount_total"`
	ProjectAmount     int64   `json:"project_amount"`
	TipAmount         int64   `json:"tip_amount"`
	Currency          string  `json:"currency"`
}

type StatusPayload struct {
	From         string `json:"from"`
	To           string `json:"to"`
	FundingTotal int64  `json:"funding_total"`
	FundingGoal  int64  `json:"funding_goal"`
}

func NewKafkaProducer(cfg *config.Config) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Kafka.BootstrapServers,
		"acks":               "all",
		"enable.idempotence": true,
		"client.id":          cfg.App.Name,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("bootstrap_servers", cfg.Kafka.BootstrapServers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Produtor Kafka iniciado")
	return producer, nil
}

func NewKafkaPublisher(producer messageProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) DonationCompleted(ctx context.Context, d *donation.Donation) error {
	return p.publish(ctx, LedgerEvent{
		Type:       EventDonationCompleted,
		OccurredAt: time.Now().UTC(),
		ProjectId:  d.ProjectId.String(),
		Donation: &DonationPayload{
			Id:                d.Id.String(),
			CheckoutSessionId: d.CheckoutSessionId,
			UserId:            pkg.ULIDPtrToString(d.UserId),
			AmountTotal:       d.AmountTotal,
			ProjectAmount:     d.ProjectAmount,
			TipAmount:         d.TipAmount,
			Currency:          d.Currency,
		},
	})
}

func (p *KafkaPublisher) ProjectStatusChanged(ctx context.Context, entity *project.Project, from project.Status) error {
	return p.publish(ctx, LedgerEvent{
		Type:       EventProjectStatusChanged,
		OccurredAt: time.Now().UTC(),
		ProjectId:  entity.Id.String(),
		Status: &StatusPayload{
			From:         string(from),
			To:           string(entity.Status),
			FundingTotal: entity.FundingTotal,
			FundingGoal:  entity.FundingGoal,
		},
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, event LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.ProjectId),
		Value:          value,
		Headers:        []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
	}, delivery)
	if err != nil {
		return err
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case ev := <-delivery:
		msg, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("evento de entrega inesperado: %v", ev)
		}
		if msg.TopicPartition.Error != nil {
			return msg.TopicPartition.Error
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout aguardando confirmacao do kafka para %s", event.Type)
	case <-ctx.Done():
		return ctx.Err()
	}
}
