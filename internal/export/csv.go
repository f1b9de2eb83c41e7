package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/hibidash/internal/store"
)

// ToCSV writes spending entries, one row each.
func ToCSV(entries []store.SpendingEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Date", "Category", "Description", "Amount", "Amount (cents)", "Created"}); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Date,
			e.Category,
			e.Description,
			e.Amount.String(),
			strconv.FormatInt(int64(e.Amount), 10),
			e.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
