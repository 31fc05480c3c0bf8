// Package reporter renders per-recipient outcome tables and run summaries to
// the console, the operator-facing end of a distribution run.
package reporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/dustin/go-humanize"
)

// Console writes tab-aligned tables to an io.Writer, usually os.Stdout.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintOutcomes renders one row per recipient: allocation, resolution state
// and, in commit mode, the transfer result.
func (c *Console) PrintOutcomes(mint string, outcomes []models.TransferOutcome) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tWALLET\tALLOCATION\tSHARE\tACCOUNT\tSTATUS")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortAddr(mint),
			o.Entry.Recipient,
			humanize.Comma(int64(o.Entry.Amount)),
			o.Entry.RealizedShare.StringFixed(2),
			resolutionCell(o.Resolution),
			statusCell(o),
		)
	}
	w.Flush()
}

// PrintSummary renders the aggregate line. Percentages are always relative to
// the pre-run balance snapshot.
func (c *Console) PrintSummary(s models.RunSummary) {
	if s.Balance == 0 {
		fmt.Fprintf(c.out, "Mint %s: funder balance is 0, nothing to distribute.\n", shortAddr(s.Mint.String()))
		return
	}
	if s.Committed {
		fmt.Fprintf(c.out, "Sum of tokens sent: %s (= %s%% of funder balance %s)\n",
			humanize.Comma(int64(s.TotalMoved)),
			s.PercentMoved().StringFixed(2),
			humanize.Comma(int64(s.Balance)),
		)
		return
	}
	fmt.Fprintf(c.out, "Sum of tokens in allocation: %s (= %s%% of funder balance %s)\n",
		humanize.Comma(int64(s.TotalAllocated)),
		s.PercentAllocated().StringFixed(2),
		humanize.Comma(int64(s.Balance)),
	)
	fmt.Fprintln(c.out, "\nRun with the commit command to send the transfers.")
}

func resolutionCell(r models.AccountResolution) string {
	if !r.Resolved {
		return "not found"
	}
	return shortAddr(r.Account.String())
}

func statusCell(o models.TransferOutcome) string {
	switch {
	case o.Skipped:
		return "skipped (already sent)"
	case o.Transferred:
		return "sent " + shortAddr(o.Signature.String())
	case o.Failed:
		return "transfer failed"
	case !o.Resolution.Resolved:
		return "unresolved"
	case o.Entry.Amount == 0:
		return "no allocation"
	default:
		return "resolved"
	}
}

func shortAddr(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
