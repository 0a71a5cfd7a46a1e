package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// WriteTable renders one row per flag.
func WriteTable(w io.Writer, r domain.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "Transactions", "Accounts", "Score", "Reason"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, f := range r.Flags {
		score := "-"
		if f.Score != 0 {
			score = strconv.FormatFloat(f.Score, 'f', 2, 64)
		}
		table.Append([]string{
			string(f.Kind),
			strings.Join(f.TransactionIDs, " "),
			strings.Join(f.Accounts, " "),
			score,
			f.Reason,
		})
	}
	table.Render()
}

// WriteSummaryTable renders the per-kind counts followed by the month histogram.
func WriteSummaryTable(w io.Writer, s Summary) {
	kinds := tablewriter.NewWriter(w)
	kinds.SetHeader([]string{"Kind", "Flags", "Transactions"})
	for _, k := range s.ByKind {
		kinds.Append([]string{string(k.Kind), strconv.Itoa(k.Flags), strconv.Itoa(k.Transactions)})
	}
	kinds.SetFooter([]string{"Total", strconv.Itoa(s.TotalFlags),
		fmt.Sprintf("%d / %d", s.FlaggedTransactions, s.TotalTransactions)})
	kinds.Render()

	months := tablewriter.NewWriter(w)
	header := make([]string, 12)
	row := make([]string, 12)
	for i, n := range s.ByMonth {
		header[i] = monthNames[i]
		row[i] = strconv.Itoa(n)
	}
	months.SetHeader(header)
	months.Append(row)
	months.Render()
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
