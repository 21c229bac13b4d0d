package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/feed"
	"github.com/rustyeddy/fxrisk/feed/replay"
	"github.com/rustyeddy/fxrisk/service"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Record a market data snapshot for offline replay",
	Long: `Download the latest USD/MAD quote and the configured daily history and
write them to a CSV snapshot that "fxvar assess --snapshot" can replay.

Example:
  fxvar fetch --out usdmad.csv`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var fetchOut string

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "usdmad.csv", "snapshot output path")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := service.NewSource(cfg)
	if err != nil {
		return err
	}

	w := cfg.Window(time.Now())
	snap, err := feed.Fetch(cmd.Context(), src, w, cfg.Feed.Timeout)
	if err != nil {
		return err
	}
	if err := replay.WriteFile(fetchOut, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", fetchOut)
	fmt.Fprintf(out, "  source: %s\n", snap.Source)
	fmt.Fprintf(out, "  quote:  %.4f at %s\n", snap.Quote.Price, snap.Quote.Time.Format(time.RFC3339))
	fmt.Fprintf(out, "  rows:   %d (%d usable, field %s)\n", snap.Series.Len(), snap.Series.Usable(), snap.Series.Field)
	return nil
}
