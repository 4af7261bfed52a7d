package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/scenario"
)

// renderPoints prints the running-balance series as an aligned table.
// Negative periods are flagged in the last column.
func renderPoints(w io.Writer, points []model.ProjectionDataPoint) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD END\tSTARTING\tINFLOWS\tOUTFLOWS\tENDING\t\t")
	for _, pt := range points {
		flag := ""
		if pt.IsNegative {
			flag = "NEGATIVE"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			pt.Date.Format(dateLayout),
			pt.StartingCash.StringFixed(2),
			pt.Inflows.StringFixed(2),
			pt.Outflows.StringFixed(2),
			pt.EndingCash.StringFixed(2),
			flag)
	}
	tw.Flush()
}

// renderEvents prints the cash events of one period.
func renderEvents(w io.Writer, events []model.CashEvent) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tENTITY\tSOURCE\tCATEGORY\tDIRECTION\tAMOUNT")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Date.Format(dateLayout),
			ev.Entity,
			ev.Source,
			ev.Category,
			ev.Direction,
			ev.Amount.StringFixed(2))
	}
	tw.Flush()
}

// renderImpact prints the baseline-versus-adjusted comparison that
// accompanies a scenario overlay.
func renderImpact(w io.Writer, s scenario.Summary) {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tBASELINE\tADJUSTED\tDELTA\t")
	fmt.Fprintf(tw, "Inflows\t%s\t%s\t%s\t\n",
		s.Baseline.Inflows.StringFixed(2), s.Adjusted.Inflows.StringFixed(2), s.Delta.Inflows.StringFixed(2))
	fmt.Fprintf(tw, "Outflows\t%s\t%s\t%s\t\n",
		s.Baseline.Outflows.StringFixed(2), s.Adjusted.Outflows.StringFixed(2), s.Delta.Outflows.StringFixed(2))
	fmt.Fprintf(tw, "Ending cash\t%s\t%s\t%s\t\n",
		s.Baseline.EndingCash.StringFixed(2), s.Adjusted.EndingCash.StringFixed(2), s.Delta.EndingCash.StringFixed(2))
	tw.Flush()
	fmt.Fprintf(w, "Lowest ending cash %s on %s; %d negative period(s)\n",
		s.MinEndingCash.StringFixed(2), s.MinEndingDate.Format(dateLayout), s.NegativePeriods)
}
