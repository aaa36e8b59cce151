package main

import (
	"context"
	"fmt"
	"io"

	"Wildfund/internal/domain/ledger"

	"github.com/spf13/cobra"
)

func backfillFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill-fees",
		Short: "Reexecuta o enriquecimento de taxa das doações sem liquidação",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withLedger(cmd.Context(), func(ctx context.Context, deps *ledgerDeps) error {
				report, err := ledger.BackfillFees(ctx, deps.Donations, deps.Enricher, limit)
				if report != nil {
					printBackfillReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}

	cmd.Flags().IntP("limit", "n", 100, "Máximo de doações processadas")

	return cmd
}

func printBackfillReport(w io.Writer, report *ledger.BackfillReport) {
	fmt.Fprintf(w, "Doações analisadas:   %d\n", report.Scanned)
	fmt.Fprintf(w, "Taxas registradas:    %d\n", report.Enriched)
	fmt.Fprintf(w, "Falhas (reprocessar): %d\n", report.Failed)
}
