package ledger

import (
	"context"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/logger"

	"github.com/oklog/ulid/v2"
)

type BackfillReport struct {
	Scanned  int
	Enriched int
	Failed   int
}

// BackfillFees reexecuta o enriquecimento para doacoes completed sem detalhe
// ou com taxa nula.
func BackfillFees(ctx context.Context, donations donation.Repository, enricher *Enricher, limit int) (*BackfillReport, error) {
	pending, err := donations.ListMissingSettlement(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{Scanned: len(pending)}
	for _, d := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := enricher.EnrichDonation(ctx, d, "backfill", nil); err != nil {
			report.Failed++
			logger.Warn().
				Err(err).
				Str("donation_id", d.Id.String()).
				Str("payment_intent_id", d.PaymentIntentId).
				Msg("Backfill de taxa falhou")
			continue
		}
		report.Enriched++
	}
	return report, nil
}

type Drift struct {
	ProjectId    ulid.ULID
	FundingTotal int64
	LedgerTotal  int64
}

func (d Drift) Difference() int64 {
	return d.FundingTotal - d.LedgerTotal
}

// VerifyTotals compara o total de cada projeto com a soma de project_amount
// das doacoes completed.
func VerifyTotals(ctx context.Context, projects project.Repository, donations donation.Repository) ([]Drift, error) {
	sums, err := donations.SumCompletedByProject(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := projects.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, id := range ids {
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p.FundingTotal != sums[id] {
			drifts = append(drifts, Drift{ProjectId: id, FundingTotal: p.FundingTotal, LedgerTotal: sums[id]})
		}
	}
	return drifts, nil
}
