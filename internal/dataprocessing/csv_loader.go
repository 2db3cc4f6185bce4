package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// sniffDelimiters are the candidates considered when inferring a delimiter
var sniffDelimiters = []rune{',', ';', '\t', '|', ':'}

// sniffSampleLines bounds how much of the file delimiter inference reads
const sniffSampleLines = 50

// csvStrategies returns the ladder for CSV input: per encoding a fixed
// comma parse then a sniffed parse, then one lossy UTF-8 attempt
func (l *Loader) csvStrategies(raw []byte) *ladder {
	lad := newLadder("csv", l.logger)
	for _, enc := range candidateEncodings {
		enc := enc
		lad.add("csv:"+enc.name+":comma", enc.name, func() (*domain.Table, error) {
			text, err := enc.decode(raw)
			if err != nil {
				return nil, err
			}
			return parseComma(text)
		})
		lad.add("csv:"+enc.name+":sniffed", enc.name, func() (*domain.Table, error) {
			text, err := enc.decode(raw)
			if err != nil {
				return nil, err
			}
			return parseSniffed(text)
		})
	}
	lad.add("csv:utf-8-ignore:sniffed", "", func() (*domain.Table, error) {
		return parseSniffed(decodeUTF8Lossy(raw))
	})
	return lad
}

// parseComma parses with a fixed comma. A single column whose header holds
// another delimiter is a failure only when a sniffed parse finds more than
// one column, so genuine one-column files keep their comma parse.
func parseComma(text string) (*domain.Table, error) {
	table, err := parseCSV(text, ',', false)
	if err != nil {
		return nil, err
	}
	if table.Cols() != 1 || !containsOtherDelimiter(table.ColumnNames()[0], ',') {
		return table, nil
	}
	if sniffed, err := parseSniffed(text); err == nil && sniffed.Cols() > 1 {
		return nil, fmt.Errorf("single column header %q looks delimited by another character", table.ColumnNames()[0])
	}
	return table, nil
}

func parseSniffed(text string) (*domain.Table, error) {
	delim, err := sniffDelimiter(text)
	if err != nil {
		return nil, err
	}
	return parseCSV(text, delim, true)
}

// parseCSV reads a header row and data rows. Rows with more fields than the
// header are skipped, shorter rows are padded with nulls.
func parseCSV(text string, delim rune, lazy bool) (*domain.Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyContent
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy

	header, err := readRecord(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyContent
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]domain.Value
	for {
		rec, err := readRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(header) {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(header) > 1 {
			continue
		}
		row := make([]domain.Value, len(rec))
		for i, cell := range rec {
			row[i] = parseCell(cell)
		}
		rows = append(rows, row)
	}
	return tableFromRows(header, rows)
}

// readRecord reads one record, returning the record with a nil error when
// the only problem was a field count mismatch
func readRecord(r *csv.Reader) ([]string, error) {
	rec, err := r.Read()
	var pe *csv.ParseError
	if err != nil && errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
		return rec, nil
	}
	return rec, err
}

func containsOtherDelimiter(s string, delim rune) bool {
	for _, d := range sniffDelimiters {
		if d != delim && strings.ContainsRune(s, d) {
			return true
		}
	}
	return false
}

// sniffDelimiter picks the candidate that splits the sample into the most
// consistent number of fields greater than one
func sniffDelimiter(text string) (rune, error) {
	lines := sampleLines(text, sniffSampleLines)
	if len(lines) == 0 {
		return 0, errEmptyContent
	}

	best, bestScore := rune(0), 0.0
	for _, d := range sniffDelimiters {
		counts := make(map[int]int)
		for _, line := range lines {
			counts[fieldCount(line, d)]++
		}
		mode, freq := 0, 0
		for fields, n := range counts {
			if n > freq || (n == freq && fields > mode) {
				mode, freq = fields, n
			}
		}
		if mode < 2 {
			continue
		}
		score := float64(freq)/float64(len(lines)) + float64(mode)/1000
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	if best == 0 {
		return 0, errors.New("could not determine delimiter")
	}
	return best, nil
}

// fieldCount counts delimiter-separated fields outside double quotes
func fieldCount(line string, delim rune) int {
	n, quoted := 1, false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == delim && !quoted:
			n++
		}
	}
	return n
}

func sampleLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}
