package database

import "database/sql"

// Row is a single result set row as a column-name-to-value mapping.
type Row map[string]any

// scanRows drains rows into an ordered slice of Row mappings. Byte slices
// are converted to strings because the mysql driver returns text columns
// as []byte.
func scanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			value := values[i]
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[column] = value
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
