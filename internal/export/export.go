package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cleanhive/internal/database"

	"github.com/rs/zerolog"
)

// TableDump is one element of the export envelope: a table name plus its
// rows, newest first.
type TableDump struct {
	Table string           `json:"table"`
	Data  []map[string]any `json:"data"`
}

// Service produces and consumes the JSON export envelope and writes the
// Excel schedule report.
type Service struct {
	db     *database.DB
	path   string
	logger *zerolog.Logger
}

func NewService(db *database.DB, path string, logger *zerolog.Logger) *Service {
	return &Service{db: db, path: path, logger: logger}
}

// Dump collects the requested tables into the export envelope. Passing no
// tables dumps every exportable table.
func (s *Service) Dump(ctx context.Context, tables []string) ([]TableDump, error) {
	if len(tables) == 0 {
		tables = database.ExportableTables()
	}

	result := make([]TableDump, 0, len(tables))
	for _, table := range tables {
		if !database.ExportableTable(table) {
			return nil, fmt.Errorf("table %s is not exportable", table)
		}
		rows, err := s.db.DumpTable(ctx, table)
		if err != nil {
			return nil, err
		}
		result = append(result, TableDump{Table: table, Data: rows})
	}
	return result, nil
}

// WriteJSON dumps tables to a timestamped file under the export directory.
func (s *Service) WriteJSON(ctx context.Context, tables []string) (string, error) {
	dumps, err := s.Dump(ctx, tables)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	fileName := fmt.Sprintf("export_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(s.path, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("error creating export file: %v", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dumps); err != nil {
		return "", fmt.Errorf("error writing export file: %v", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("JSON export created")
	return filePath, nil
}

// Import reads an export envelope and inserts its rows. Unknown tables abort
// the whole import before anything is written.
func (s *Service) Import(ctx context.Context, r io.Reader) (map[string]int64, error) {
	var dumps []TableDump
	if err := json.NewDecoder(r).Decode(&dumps); err != nil {
		return nil, fmt.Errorf("failed to decode import payload: %w", err)
	}

	for _, dump := range dumps {
		if !database.ExportableTable(dump.Table) {
			return nil, fmt.Errorf("table %s is not importable", dump.Table)
		}
	}

	counts := make(map[string]int64, len(dumps))
	for _, dump := range dumps {
		n, err := s.db.ImportRows(ctx, dump.Table, dump.Data)
		if err != nil {
			return counts, err
		}
		counts[dump.Table] = n
	}

	s.logger.Info().Interface("counts", counts).Msg("import completed")
	return counts, nil
}
