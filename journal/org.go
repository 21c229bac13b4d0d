package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxrisk/report"
)

// FormatOrg renders an assessment as an Org-mode block: the facts in a
// PROPERTIES drawer for search, the text report as the body.
func FormatOrg(a Assessment) string {
	r := a.Result
	heading := fmt.Sprintf("** VaR: %s %s -> %s (%s)",
		a.Instrument, a.Request.InvoiceDate, a.Request.SettlementDate, shortID(a.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", a.ID))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", a.CreatedAt.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":SOURCE: %s\n", a.Source))
	b.WriteString(fmt.Sprintf(":WINDOW: %s..%s\n", a.WindowStart.Format(time.DateOnly), a.WindowEnd.Format(time.DateOnly)))
	b.WriteString(fmt.Sprintf(":AMOUNT_USD: %.2f\n", a.Request.AmountUSD))
	b.WriteString(fmt.Sprintf(":HORIZON_DAYS: %d\n", r.HorizonDays))
	b.WriteString(fmt.Sprintf(":RATE: %.4f\n", r.CurrentRate))
	b.WriteString(fmt.Sprintf(":HORIZON_VAR: %s\n", r.HorizonVaR))
	b.WriteString(fmt.Sprintf(":POTENTIAL_LOSS: %.2f\n", r.PotentialLoss))
	b.WriteString(fmt.Sprintf(":VOL_USED: %s\n", r.Volatility.Used))
	b.WriteString(fmt.Sprintf(":CLAMPED: %t\n", r.Volatility.Clamped))
	b.WriteString(fmt.Sprintf(":NU: %.4f\n", r.Volatility.Nu))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("#+begin_example\n")
	b.WriteString(report.Text(r))
	b.WriteString("#+end_example\n")

	return b.String()
}

// FormatOrgList renders multiple assessments separated by blank lines.
func FormatOrgList(as []Assessment) string {
	var b strings.Builder
	for i, a := range as {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatOrg(a))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
