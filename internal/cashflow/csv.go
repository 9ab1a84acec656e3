package cashflow

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteLedgerCSV serialises the ledger, newest first, followed by the totals.
func WriteLedgerCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Type", "Reference", "Description", "Amount", "Balance"}); err != nil {
		return err
	}
	for _, e := range report.Entries {
		if err := writer.Write([]string{
			e.Date.Format("2006-01-02"),
			string(e.Type),
			e.Reference,
			e.Description,
			formatInt(e.Amount),
			formatInt(e.RunningBalance),
		}); err != nil {
			return err
		}
	}
	totals := [][]string{
		{"", "opening", "", "", "", formatInt(report.OpeningBalance)},
		{"", "income", "", "", formatInt(report.TotalIncome), ""},
		{"", "expense", "", "", formatInt(report.TotalExpenses), ""},
		{"", "closing", "", "", "", formatInt(report.ClosingBalance)},
	}
	for _, record := range totals {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
