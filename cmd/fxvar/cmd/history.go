package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the assessment journal",
	Long: `Query assessments recorded in the configured journal.

Subcommands:
  list  - List recent assessments
  show  - Show one assessment by id

Examples:
  fxvar history list --limit 5
  fxvar history show 01JS9Q8X6W3Y5Z7A2B4C6D8E0F --org`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent assessments",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var (
	historyLimit int
	historyOrg   bool
	historyJSON  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of assessments to list (0 for all)")
	historyListCmd.Flags().BoolVar(&historyOrg, "org", false, "print Org-mode blocks")
	historyShowCmd.Flags().BoolVar(&historyOrg, "org", false, "print an Org-mode block")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the structured result")
}

func openJournal() (journal.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.Journal.Type, cfg.JournalPath())
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	all, err := j.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list assessments: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyOrg {
		fmt.Fprint(out, journal.FormatOrgList(all))
		return nil
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No assessments recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tAMOUNT USD\tHORIZON\tVAR\tLOSS\tSOURCE")
	for _, a := range all {
		r := a.Result
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dd\t%s\t%s\t%s\n",
			a.ID,
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			report.Amount(a.Request.AmountUSD),
			r.HorizonDays,
			r.HorizonVaR,
			report.Amount(r.PotentialLoss),
			a.Source,
		)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	a, err := j.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case historyOrg:
		fmt.Fprint(out, journal.FormatOrg(a))
	case historyJSON:
		b, err := report.JSON(a.Result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
	default:
		fmt.Fprintf(out, "Assessment %s (%s, source %s)\n\n", a.ID, a.CreatedAt.Format("2006-01-02 15:04:05 MST"), a.Source)
		fmt.Fprint(out, report.Render(a.Result, report.Options{Verbose: true}))
	}
	return nil
}
