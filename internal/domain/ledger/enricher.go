package ledger

import (
	"context"
	"errors"
	"time"

	"Wildfund/internal/domain/donation"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"
)

const DefaultSettlementTimeout = 10 * time.Second

// Enricher grava taxa e liquido no TransactionDetail. Falhas da consulta de
// liquidacao nunca desfazem o ledger; os campos ficam nulos para o backfill.
type Enricher struct {
	Donations   donation.Repository
	Settlements SettlementLookup
	Timeout     time.Duration
}

func NewEnricher(donations donation.Repository, settlements SettlementLookup, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = DefaultSettlementTimeout
	}
	return &Enricher{Donations: donations, Settlements: settlements, Timeout: timeout}
}

// EnrichDonation resolve a cobranca do payment intent da doacao e grava o
// detalhe. Sem cobranca resolvida nao ha chave, entao nada e gravado.
func (e *Enricher) EnrichDonation(ctx context.Context, d *donation.Donation, eventType string, rawEvent []byte) error {
	if d.PaymentIntentId == "" {
		return appErrors.ErrSettlementUnavailable.WithDetails(map[string]interface{}{
			"donation_id": d.Id.String(),
			"reason":      "payment intent ausente",
		})
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	chargeID, err := e.Settlements.LatestChargeID(lookupCtx, d.PaymentIntentId)
	cancel()
	if err != nil {
		return appErrors.ErrSettlementUnavailable.WithError(err)
	}
	if chargeID == "" {
		return appErrors.ErrSettlementUnavailable.WithDetails(map[string]interface{}{
			"payment_intent_id": d.PaymentIntentId,
			"reason":            "cobranca ainda nao criada",
		})
	}

	detail := donation.NewTransactionDetail(d, chargeID)
	detail.EventType = eventType
	detail.RawEvent = rawEvent

	settlementErr := e.applySettlement(ctx, detail)

	if err := e.Donations.UpsertTransactionDetail(ctx, detail); err != nil {
		return err
	}
	return settlementErr
}

// EnrichCharge trata charge.succeeded. Com detalhe existente, atualiza; sem
// detalhe mas com doacao do mesmo payment intent, cria vinculado; sem nenhum
// dos dois, nao faz nada e a sessao concluida criara o detalhe depois.
func (e *Enricher) EnrichCharge(ctx context.Context, charge ChargeEvent) error {
	detail, err := e.Donations.GetTransactionDetailByChargeID(ctx, charge.ChargeId)
	if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
		return err
	}

	if detail == nil {
		if charge.PaymentIntentId == "" {
			logger.Info().
				Str("charge_id", charge.ChargeId).
				Msg("Cobranca sem payment intent, enriquecimento ignorado")
			return nil
		}
		d, err := e.Donations.GetByPaymentIntentID(ctx, charge.PaymentIntentId)
		if err != nil {
			if errors.Is(err, appErrors.ErrDonationNotFound) {
				logger.Info().
					Str("charge_id", charge.ChargeId).
					Str("payment_intent_id", charge.PaymentIntentId).
					Msg("Cobranca anterior a doacao, detalhe sera criado pela sessao concluida")
				return nil
			}
			return err
		}
		detail = donation.NewTransactionDetail(d, charge.ChargeId)
	}

	detail.EventType = charge.EventType
	detail.RawEvent = charge.RawEvent
	if charge.PaymentMethodType != "" {
		detail.PaymentMethodType = charge.PaymentMethodType
		detail.CardBrand = charge.CardBrand
		detail.CardLast4 = charge.CardLast4
	}

	settlementErr := e.applySettlement(ctx, detail)
	if settlementErr != nil {
		logger.Warn().
			Err(settlementErr).
			Str("charge_id", charge.ChargeId).
			Msg("Liquidacao indisponivel, taxa permanece nula")
	}

	return e.Donations.UpsertTransactionDetail(ctx, detail)
}

func (e *Enricher) applySettlement(ctx context.Context, detail *donation.TransactionDetail) error {
	lookupCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	settlement, err := e.Settlements.GetSettlement(lookupCtx, detail.ChargeId)
	if err != nil {
		return appErrors.ErrSettlementUnavailable.WithError(err)
	}

	fee := settlement.Fee
	net := settlement.Net
	detail.FeeAmount = &fee
	detail.NetAmount = &net
	detail.RawSettlement = settlement.Raw
	if settlement.Currency != "" {
		detail.Currency = settlement.Currency
	}
	if settlement.PaymentMethodType != "" {
		detail.PaymentMethodType = settlement.PaymentMethodType
		detail.CardBrand = settlement.CardBrand
		detail.CardLast4 = settlement.CardLast4
	}
	return nil
}
