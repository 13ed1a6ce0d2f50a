// Package export writes a month of expenses to CSV or to a Google Sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finweb/internal/core"
)

// CSVHeader is the first record of every CSV export.
var CSVHeader = []string{"Date", "Category", "Amount", "Description"}

// CSVFilename is the attachment name offered for a month's export.
func CSVFilename(m core.Month) string {
	return fmt.Sprintf("expenses-%s.csv", m)
}

// Row renders one expense as export columns. Categories that cannot be
// resolved are exported as "Unknown".
func Row(e core.Expense, names map[int64]string) []string {
	return []string{
		e.Date.String(),
		e.CategoryName(names),
		e.Amount.StringFixed(2),
		e.Description,
	}
}

// WriteCSV writes the header followed by one record per expense.
func WriteCSV(w io.Writer, expenses []core.Expense, names map[int64]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(Row(e, names)); err != nil {
			return fmt.Errorf("write csv record %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
