// Package csvio reads and writes the five-column transactions CSV
// (name,type,date,amount,tag).
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/metrics"
	"fintrack/internal/models"
)

// Header is the column order used on export.
var Header = []string{"name", "type", "date", "amount", "tag"}

// DateFormat is the calendar date layout written on export.
const DateFormat = "2006-01-02"

// Layouts accepted on import, tried in order.
var dateLayouts = []string{
	DateFormat,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Record is one imported row. Line is the 1-based line number in the file.
// Err is set when the row itself could not be parsed; Transaction is then empty.
type Record struct {
	Line        int
	Transaction models.Transaction
	Err         error
}

// Write writes txs with a header row. Missing dates are written as empty cells.
func Write(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range txs {
		if err := cw.Write(Row(&txs[i])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders tx in Header order.
func Row(tx *models.Transaction) []string {
	date := ""
	if tx.HasDate() {
		date = tx.Date.Format(DateFormat)
	}
	return []string{tx.Name, string(tx.Type), date, tx.Amount.StringFixed(2), tx.Tag}
}

// Read parses a transactions CSV. Columns are matched by header name in any
// order and extra columns are ignored; name and type are required. Amounts
// are coerced leniently and unparseable dates become the zero date, so the
// only row-level failures left to the caller are malformed rows, reported
// through Record.Err, and semantic ones.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading header: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, required := range []string{"name", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var records []Record
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			records = append(records, Record{Line: perr.StartLine, Err: perr.Err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}

		records = append(records, Record{
			Line: line,
			Transaction: models.Transaction{
				Name:   field(rec, "name"),
				Type:   models.TransactionType(strings.ToLower(field(rec, "type"))),
				Date:   ParseDate(field(rec, "date")),
				Amount: metrics.ParseAmount(field(rec, "amount")),
				Tag:    field(rec, "tag"),
			},
		})
	}
	return records, nil
}

// ParseDate parses s with the accepted layouts and returns the zero time
// when none match.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
