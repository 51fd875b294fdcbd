package database

import (
	"context"
	"fmt"
	"strings"
)

// exportTableOrder is the whitelist for dump/import, in export order.
// created_at must exist in every listed table.
var exportTableOrder = []string{
	"users",
	"bookings",
	"leads",
	"promotions",
	"service_areas",
	"reviews",
	"audit_log",
	"security_events",
}

var exportableTables = func() map[string]bool {
	m := make(map[string]bool, len(exportTableOrder))
	for _, t := range exportTableOrder {
		m[t] = true
	}
	return m
}()

func ExportableTable(name string) bool {
	return exportableTables[name]
}

// ExportableTables returns the whitelist in stable order.
func ExportableTables() []string {
	return append([]string(nil), exportTableOrder...)
}

// DumpTable reads all rows of a whitelisted table ordered by created_at
// descending, as generic maps keyed by column name.
func (db *DB) DumpTable(ctx context.Context, table string) ([]map[string]any, error) {
	if !exportableTables[table] {
		return nil, fmt.Errorf("table %s is not exportable", table)
	}

	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT * FROM %s ORDER BY created_at DESC`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to dump table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		record := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// ImportRows bulk-inserts generic records into a whitelisted table inside a
// single transaction. The id column is dropped so imported rows get fresh ids.
func (db *DB) ImportRows(ctx context.Context, table string, records []map[string]any) (int64, error) {
	if !exportableTables[table] {
		return 0, fmt.Errorf("table %s is not importable", table)
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var inserted int64
	for _, record := range records {
		cols := make([]string, 0, len(record))
		args := make([]any, 0, len(record))
		for col, v := range record {
			if col == "id" {
				continue
			}
			cols = append(cols, col)
			args = append(args, v)
		}
		if len(cols) == 0 {
			continue
		}

		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			table,
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to import row into %s: %w", table, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, nil
}
