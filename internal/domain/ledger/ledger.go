package ledger

import (
	"context"
	"encoding/json"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"

	"github.com/oklog/ulid/v2"
)

// Transactor executa fn numa transacao; repositorios leem a transacao do ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Settlement e o registro de liquidacao do processador para uma cobranca.
type Settlement struct {
	ChargeId          string
	PaymentIntentId   string
	Amount            int64
	Fee               int64
	Net               int64
	Currency          string
	PaymentMethodType string
	CardBrand         string
	CardLast4         string
	Raw               json.RawMessage
}

type SettlementLookup interface {
	// LatestChargeID resolve a cobranca atual de um payment intent.
	LatestChargeID(ctx context.Context, paymentIntentID string) (string, error)
	GetSettlement(ctx context.Context, chargeID string) (*Settlement, error)
}

type FundingEvaluator interface {
	EvaluateFunding(ctx context.Context, projectID ulid.ULID) (*project.Project, error)
}

type DonationPublisher interface {
	DonationCompleted(ctx context.Context, donation *donation.Donation) error
}

// CompletedSession e a parte do evento de sessao concluida que o ledger usa.
type CompletedSession struct {
	SessionId       string
	PaymentIntentId string
	Currency        string
	Metadata        map[string]string
	EventId         string
	EventType       string
	RawEvent        json.RawMessage
}

// ChargeEvent e a parte do evento charge.succeeded que o ledger usa.
type ChargeEvent struct {
	ChargeId          string
	PaymentIntentId   string
	Amount            int64
	Currency          string
	PaymentMethodType string
	CardBrand         string
	CardLast4         string
	EventType         string
	RawEvent          json.RawMessage
}
