// internal/subscriber/csv.go
//
// CSV export for the admin listing.  Column order matches the JSON field
// order so spreadsheets and API consumers agree.
package subscriber

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"email", "name", "subscribedAt", "date", "hour", "weekday", "confirmed"}

// WriteCSV streams items as CSV.  Timestamps are RFC 3339 in UTC.
func WriteCSV(w io.Writer, items []Subscription) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		name := ""
		if it.Name != nil {
			name = *it.Name
		}
		rec := []string{
			it.Email,
			name,
			it.SubscribedAt.UTC().Format(time.RFC3339),
			it.Date,
			strconv.Itoa(it.Hour),
			strconv.Itoa(it.Weekday),
			strconv.FormatBool(it.Confirmed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
