package ledger

import (
	"context"
	"strings"
	"time"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"
	"Wildfund/internal/pkg"
)

type Writer struct {
	Projects   project.Repository
	Donations  donation.Repository
	Transactor Transactor
	Funding    FundingEvaluator
	Enricher   *Enricher
	Publisher  DonationPublisher
}

func NewWriter(
	projects project.Repository,
	donations donation.Repository,
	transactor Transactor,
	funding FundingEvaluator,
	enricher *Enricher,
	publisher DonationPublisher,
) *Writer {
	return &Writer{
		Projects:   projects,
		Donations:  donations,
		Transactor: transactor,
		Funding:    funding,
		Enricher:   enricher,
		Publisher:  publisher,
	}
}

// RecordCompletedSession grava a doacao e incrementa o total do projeto numa
// transacao. A restricao unica da sessao decide entre Created e AlreadyExists;
// reentregas nunca incrementam de novo.
func (w *Writer) RecordCompletedSession(ctx context.Context, session CompletedSession) (donation.InsertResult, error) {
	if strings.TrimSpace(session.SessionId) == "" {
		return 0, appErrors.NewMetadataError("session_id", "ausente")
	}

	meta, err := DecodeMetadata(session.Metadata)
	if err != nil {
		return 0, err
	}

	proj, err := w.Projects.GetByID(ctx, meta.ProjectId)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	entity := &donation.Donation{
		Id:                pkg.GenerateULIDObject(),
		ProjectId:         proj.Id,
		UserId:            meta.UserId,
		RecipientId:       proj.OwnerId,
		CheckoutSessionId: session.SessionId,
		PaymentIntentId:   session.PaymentIntentId,
		AmountTotal:       meta.TotalAmount,
		ProjectAmount:     meta.ProjectAmount,
		TipAmount:         meta.TipAmount,
		CoversFees:        meta.CoverFees,
		Currency:          strings.ToLower(session.Currency),
		Status:            donation.Completed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var result donation.InsertResult
	err = w.Transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		inserted, err := w.Donations.InsertDonationIfAbsent(txCtx, entity)
		if err != nil {
			return err
		}
		result = inserted
		if inserted != donation.Created {
			return nil
		}
		return w.Projects.IncrementFunding(txCtx, proj.Id, entity.ProjectAmount)
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("session_id", session.SessionId).
			Str("project_id", proj.Id.String()).
			Msg("Falha ao gravar doacao no ledger")
		return 0, err
	}

	logger.Info().
		Str("session_id", session.SessionId).
		Str("project_id", proj.Id.String()).
		Int64("project_amount", entity.ProjectAmount).
		Str("result", result.String()).
		Msg("Sessao de pagamento concluida processada")

	if result == donation.Created {
		w.enrich(ctx, entity, session)
		w.publish(ctx, entity)
	}

	// reavaliar tambem em AlreadyExists recupera uma reentrega cuja
	// avaliacao anterior falhou depois do commit
	if _, err := w.Funding.EvaluateFunding(ctx, proj.Id); err != nil {
		return result, err
	}

	return result, nil
}

// RecordPaymentFailed marca como failed a doacao do payment intent, se houver.
// Sem doacao gravada e um no-op; o total do projeto nunca muda aqui.
// So doacoes completed sao gravadas e completed nunca vira failed, entao hoje
// o update nao casa nenhuma linha e o evento e apenas confirmado.
func (w *Writer) RecordPaymentFailed(ctx context.Context, paymentIntentID string) (int64, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return 0, appErrors.NewMetadataError("payment_intent_id", "ausente")
	}

	affected, err := w.Donations.MarkFailedByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return 0, err
	}

	logger.Info().
		Str("payment_intent_id", paymentIntentID).
		Int64("donations_marked", affected).
		Msg("Falha de pagamento registrada")

	return affected, nil
}

func (w *Writer) enrich(ctx context.Context, entity *donation.Donation, session CompletedSession) {
	if w.Enricher == nil {
		return
	}
	if err := w.Enricher.EnrichDonation(ctx, entity, session.EventType, session.RawEvent); err != nil {
		logger.Warn().
			Err(err).
			Str("donation_id", entity.Id.String()).
			Str("payment_intent_id", entity.PaymentIntentId).
			Msg("Enriquecimento de taxa adiado para backfill")
	}
}

func (w *Writer) publish(ctx context.Context, entity *donation.Donation) {
	if w.Publisher == nil {
		return
	}
	if err := w.Publisher.DonationCompleted(ctx, entity); err != nil {
		logger.Warn().
			Err(err).
			Str("donation_id", entity.Id.String()).
			Msg("Falha ao publicar evento de doacao")
	}
}
