package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/feed/replay"
	"github.com/rustyeddy/fxrisk/report"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/rustyeddy/fxrisk/service"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess the FX risk of a USD receivable",
	Long: `Fetch USD/MAD market data, fit the volatility model and print the VaR
report for one receivable. Without flags the reference scenario is used:
10,000 USD invoiced 2025-04-23 and settled 2025-06-23, with the 99% stress
pass.

Examples:
  fxvar assess
  fxvar assess --amount 25000 --invoice 2025-05-01 --settlement 2025-07-15
  fxvar assess --snapshot usdmad.csv --json
  fxvar assess --record usdmad.csv --verbose`,
	Args: cobra.NoArgs,
	RunE: runAssess,
}

var (
	assessAmount     float64
	assessInvoice    string
	assessSettlement string
	assessStress     bool
	assessJSON       bool
	assessVerbose    bool
	assessSnapshot   string
	assessRecord     string
)

func init() {
	rootCmd.AddCommand(assessCmd)

	ref := risk.ReferenceRequest()
	assessCmd.Flags().Float64Var(&assessAmount, "amount", ref.AmountUSD, "receivable amount in USD")
	assessCmd.Flags().StringVar(&assessInvoice, "invoice", ref.InvoiceDate, "invoice date (YYYY-MM-DD)")
	assessCmd.Flags().StringVar(&assessSettlement, "settlement", ref.SettlementDate, "expected settlement date (YYYY-MM-DD)")
	assessCmd.Flags().BoolVar(&assessStress, "stress", ref.Stress, "add the 99% stress pass")
	assessCmd.Flags().BoolVar(&assessJSON, "json", false, "print the structured result instead of the text report")
	assessCmd.Flags().BoolVarP(&assessVerbose, "verbose", "v", false, "append model diagnostics to the report")
	assessCmd.Flags().StringVar(&assessSnapshot, "snapshot", "", "replay market data from a recorded CSV snapshot")
	assessCmd.Flags().StringVar(&assessRecord, "record", "", "save the market data used to a CSV snapshot")
}

func runAssess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if assessSnapshot != "" {
		cfg.Feed.Provider = "replay"
		cfg.Feed.Replay.Path = assessSnapshot
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	a, store, err := service.New(cfg, log, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	var rec *replay.Recorder
	if assessRecord != "" {
		rec = replay.NewRecorder(a.Source)
		a.Source = rec
	}

	req := risk.Request{
		AmountUSD:      assessAmount,
		InvoiceDate:    assessInvoice,
		SettlementDate: assessSettlement,
		Stress:         assessStress,
	}
	out, err := a.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	if rec != nil {
		if err := replay.WriteFile(assessRecord, rec.Snapshot()); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	if assessJSON {
		b, err := report.JSON(out.Result)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	}

	fmt.Fprint(w, report.Render(out.Result, report.Options{Verbose: assessVerbose}))
	if assessVerbose {
		fmt.Fprintf(w, "\nAssessment %s (source %s)\n", out.ID, out.Source)
	}
	return nil
}
