package webhook

import (
	"context"
	"encoding/json"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/ledger"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"

	"github.com/stripe/stripe-go/v74"
)

const (
	EventCheckoutSessionCompleted           = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceed = "checkout.session.async_payment_succeeded"
	EventCheckoutSessionAsyncPaymentFailed  = "checkout.session.async_payment_failed"
	EventChargeSucceeded                    = "charge.succeeded"
	EventPaymentIntentFailed                = "payment_intent.payment_failed"
)

type LedgerRecorder interface {
	RecordCompletedSession(ctx context.Context, session ledger.CompletedSession) (donation.InsertResult, error)
	RecordPaymentFailed(ctx context.Context, paymentIntentID string) (int64, error)
}

type ChargeEnricher interface {
	EnrichCharge(ctx context.Context, charge ledger.ChargeEvent) error
}

type EventArchiver interface {
	Archive(ctx context.Context, eventType, eventID string, payload []byte) error
}

// Dispatcher roteia eventos ja verificados pelo tipo. Tipos desconhecidos sao
// registrados e confirmados.
type Dispatcher struct {
	Ledger   LedgerRecorder
	Enricher ChargeEnricher
	Archive  EventArchiver
}

func NewDispatcher(recorder LedgerRecorder, enricher ChargeEnricher, archive EventArchiver) *Dispatcher {
	return &Dispatcher{Ledger: recorder, Enricher: enricher, Archive: archive}
}

// Dispatch devolve erro apenas quando o evento deve ser reenviado. Erros de
// dominio tratados sao registrados e engolidos aqui.
func (d *Dispatcher) Dispatch(ctx context.Context, event *stripe.Event, payload []byte) error {
	eventType := string(event.Type)

	d.archive(ctx, eventType, event.ID, payload)

	var err error
	switch eventType {
	case EventCheckoutSessionCompleted, EventCheckoutSessionAsyncPaymentSucceed:
		err = d.handleSessionCompleted(ctx, event, payload)
	case EventCheckoutSessionAsyncPaymentFailed:
		err = d.handleSessionFailed(ctx, event)
	case EventChargeSucceeded:
		err = d.handleChargeSucceeded(ctx, event, payload)
	case EventPaymentIntentFailed:
		err = d.handlePaymentIntentFailed(ctx, event)
	default:
		logger.Info().
			Str("event_id", event.ID).
			Str("event_type", eventType).
			Str("outcome", "ignored").
			Msg("Tipo de evento ignorado")
		return nil
	}

	if err == nil {
		logger.Info().
			Str("event_id", event.ID).
			Str("event_type", eventType).
			Str("outcome", "processed").
			Msg("Evento processado")
		return nil
	}

	if appErrors.IsHandled(err) {
		logger.Warn().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", eventType).
			Str("outcome", "dropped").
			Msg("Evento descartado por erro de dominio")
		return nil
	}

	logger.Error().
		Err(err).
		Str("event_id", event.ID).
		Str("event_type", eventType).
		Str("outcome", "failed").
		Msg("Falha ao processar evento")
	return err
}

func (d *Dispatcher) handleSessionCompleted(ctx context.Context, event *stripe.Event, payload []byte) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return appErrors.NewMetadataError("data.object", "sessão de checkout inválida")
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		session.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		logger.Info().
			Str("event_id", event.ID).
			Str("session_id", session.ID).
			Str("payment_status", string(session.PaymentStatus)).
			Msg("Sessao concluida aguardando pagamento assincrono")
		return nil
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	_, err := d.Ledger.RecordCompletedSession(ctx, ledger.CompletedSession{
		SessionId:       session.ID,
		PaymentIntentId: paymentIntentID,
		Currency:        string(session.Currency),
		Metadata:        session.Metadata,
		EventId:         event.ID,
		EventType:       string(event.Type),
		RawEvent:        payload,
	})
	return err
}

func (d *Dispatcher) handleSessionFailed(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return appErrors.NewMetadataError("data.object", "sessão de checkout inválida")
	}
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return nil
	}
	_, err := d.Ledger.RecordPaymentFailed(ctx, session.PaymentIntent.ID)
	return err
}

func (d *Dispatcher) handleChargeSucceeded(ctx context.Context, event *stripe.Event, payload []byte) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil || charge.ID == "" {
		return appErrors.NewMetadataError("data.object", "cobrança inválida")
	}

	summary := ledger.ChargeEvent{
		ChargeId:  charge.ID,
		Amount:    charge.Amount,
		Currency:  string(charge.Currency),
		EventType: string(event.Type),
		RawEvent:  payload,
	}
	if charge.PaymentIntent != nil {
		summary.PaymentIntentId = charge.PaymentIntent.ID
	}
	if details := charge.PaymentMethodDetails; details != nil {
		summary.PaymentMethodType = string(details.Type)
		if details.Card != nil {
			summary.CardBrand = string(details.Card.Brand)
			summary.CardLast4 = details.Card.Last4
		}
	}

	return d.Enricher.EnrichCharge(ctx, summary)
}

func (d *Dispatcher) handlePaymentIntentFailed(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		return appErrors.NewMetadataError("data.object", "payment intent inválido")
	}
	_, err := d.Ledger.RecordPaymentFailed(ctx, intent.ID)
	return err
}

func (d *Dispatcher) archive(ctx context.Context, eventType, eventID string, payload []byte) {
	if d.Archive == nil {
		return
	}
	if err := d.Archive.Archive(ctx, eventType, eventID, payload); err != nil {
		logger.Warn().
			Err(err).
			Str("event_id", eventID).
			Str("event_type", eventType).
			Msg("Falha ao arquivar evento")
	}
}
