package table

import (
	"encoding/csv"
	"io"
)

// Headers returns the CSV header row: every column with a Header, in order.
func (s Schema[T]) Headers() []string {
	var h []string
	for _, c := range s.Columns {
		if c.Header != "" {
			h = append(h, c.Header)
		}
	}
	return h
}

// WriteCSV writes the header row followed by one record per row.
func (s Schema[T]) WriteCSV(w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers()); err != nil {
		return err
	}
	rec := make([]string, 0, len(s.Columns))
	for _, row := range rows {
		rec = rec[:0]
		for _, c := range s.Columns {
			if c.Header != "" {
				rec = append(rec, c.Text(row))
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
