package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Ferramentas de operação do ledger de doações",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(backfillFeesCmd())
	rootCmd.AddCommand(verifyTotalsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
