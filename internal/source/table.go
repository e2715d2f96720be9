package source

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Row is one record of a plain attribute table, keyed by column name.
type Row map[string]string

// Table is a geometry-free tabular dataset used as a join source, for
// example locality population figures. It is loaded once and held read-only
// for the duration of a join.
type Table struct {
	Columns []string
	Rows    []Row
}

// LoadTable reads a headered CSV file into an ordered table.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s: empty file", path)
	}

	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}

	log.Debug().Str("path", path).Int("rows", len(t.Rows)).Msg("Attribute table loaded")
	return t, nil
}
