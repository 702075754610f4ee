package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvTable is a parsed CSV payload with a case-insensitive header index
type csvTable struct {
	index map[string]int
	rows  [][]string
}

func readCSV(r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty CSV", ErrInvalidBatch)
	}

	t := &csvTable{index: make(map[string]int), rows: records[1:]}
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

func (t *csvTable) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func (t *csvTable) get(row []string, col string) string {
	i, ok := t.index[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
