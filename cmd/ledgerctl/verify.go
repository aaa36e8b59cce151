package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"Wildfund/internal/domain/ledger"
	"Wildfund/internal/pkg"

	"github.com/spf13/cobra"
)

func verifyTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-totals",
		Short: "Compara o total de cada projeto com a soma das doações concluídas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), func(ctx context.Context, deps *ledgerDeps) error {
				drifts, err := ledger.VerifyTotals(ctx, deps.Projects, deps.Donations)
				if err != nil {
					return err
				}
				return reportDrifts(cmd.OutOrStdout(), drifts, deps.Config.Stripe.Currency)
			})
		},
	}
}

// reportDrifts imprime as divergencias e devolve erro quando existe alguma,
// para que o comando saia com codigo diferente de zero.
func reportDrifts(w io.Writer, drifts []ledger.Drift, currency string) error {
	if len(drifts) == 0 {
		fmt.Fprintln(w, "Nenhuma divergência encontrada.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJETO\tTOTAL\tLEDGER\tDIFERENÇA")
	for _, d := range drifts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			d.ProjectId,
			pkg.FormatMinorUnits(d.FundingTotal, currency),
			pkg.FormatMinorUnits(d.LedgerTotal, currency),
			pkg.FormatMinorUnits(d.Difference(), currency),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return fmt.Errorf("%d projeto(s) com divergência entre total e ledger", len(drifts))
}
