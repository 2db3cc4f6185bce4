package exporter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// JSONWriter writes tables as an array of records
type JSONWriter struct {
	paths  pathResolver
	logger *slog.Logger
}

// WriteTable writes table as a JSON array of objects whose keys follow the
// column order. Nulls are JSON null.
func (w *JSONWriter) WriteTable(filePath string, table *domain.Table) (string, error) {
	fullPath := w.paths(filePath)

	w.logger.Info("Writing JSON file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.Rows()))

	file, err := createFile(fullPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := encodeRecords(buf, table); err != nil {
		return "", err
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush json: %w", err)
	}
	return fullPath, file.Close()
}

func encodeRecords(buf *bufio.Writer, table *domain.Table) error {
	cols := table.Columns()
	keys := make([][]byte, len(cols))
	for j, c := range cols {
		k, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		keys[j] = k
	}

	buf.WriteByte('[')
	for r := 0; r < table.Rows(); r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, c := range cols {
			if j > 0 {
				buf.WriteByte(',')
			}
			v, err := json.Marshal(jsonCell(c.Values[r]))
			if err != nil {
				return fmt.Errorf("failed to encode row %d column %q: %w", r, c.Name, err)
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	_, err := buf.WriteString("]\n")
	return err
}
