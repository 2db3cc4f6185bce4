package dataprocessing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textEncoding decodes raw file bytes into UTF-8 text
type textEncoding struct {
	name   string
	decode func(raw []byte) (string, error)
}

// candidateEncodings is the order in which text formats are tried
var candidateEncodings = []textEncoding{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: charmapDecoder("latin-1", charmap.ISO8859_1)},
	{name: "iso-8859-1", decode: charmapDecoder("iso-8859-1", charmap.ISO8859_1)},
	{name: "cp1252", decode: charmapDecoder("cp1252", charmap.Windows1252)},
}

func decodeUTF8(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", &decodeError{encoding: "utf-8", err: errors.New("invalid byte sequence")}
	}
	return string(raw), nil
}

// decodeUTF8Lossy drops every byte that is not valid UTF-8
func decodeUTF8Lossy(raw []byte) string {
	return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "")
}

func charmapDecoder(name string, enc encoding.Encoding) func([]byte) (string, error) {
	return func(raw []byte) (string, error) {
		out, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			return "", &decodeError{encoding: name, err: err}
		}
		return string(out), nil
	}
}

// naValues are the cell spellings read as missing in text sources
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// parseCell converts a raw text cell into a typed value
func parseCell(s string) domain.Value {
	trimmed := strings.TrimSpace(s)
	if _, na := naValues[s]; na || trimmed == "" {
		return domain.Null()
	}
	if f, err := cast.ToFloat64E(trimmed); err == nil {
		return domain.Number(f)
	}
	return domain.Text(s)
}

// coerceValue converts a decoded JSON/XML value into a typed cell
func coerceValue(v interface{}) domain.Value {
	switch t := v.(type) {
	case nil:
		return domain.Null()
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return domain.Number(f)
		}
		return domain.Text(t.String())
	case string:
		if f, err := cast.ToFloat64E(strings.TrimSpace(t)); err == nil && strings.TrimSpace(t) != "" {
			return domain.Number(f)
		}
		return domain.Text(t)
	case bool:
		return domain.Text(cast.ToString(t))
	case map[string]interface{}, []interface{}, *orderedObject:
		b, err := json.Marshal(t)
		if err != nil {
			return domain.Text(fmt.Sprint(t))
		}
		return domain.Text(string(b))
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return domain.Number(f)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return domain.Text(fmt.Sprint(v))
	}
	return domain.Text(s)
}

// mangleHeaders names blank headers "Unnamed: i" and suffixes repeats
// with ".1", ".2", ...
func mangleHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			candidate := fmt.Sprintf("%s.%d", name, n)
			for {
				if _, taken := seen[candidate]; !taken {
					break
				}
				n++
				candidate = fmt.Sprintf("%s.%d", name, n)
			}
			seen[name] = n + 1
			name = candidate
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

// tableFromRows builds a table from a header and positional rows. Short
// rows are padded with nulls; long rows must have been filtered already.
func tableFromRows(headers []string, rows [][]domain.Value) (*domain.Table, error) {
	if len(headers) == 0 {
		return nil, errNoRows
	}
	names := mangleHeaders(headers)
	table := domain.NewTable()
	for j, name := range names {
		values := make([]domain.Value, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		if _, err := table.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// tableFromRecords builds a table from keyed rows; columns appear in order
// of first appearance and absent keys are null
func tableFromRecords(keys []string, records []map[string]domain.Value) (*domain.Table, error) {
	if len(keys) == 0 {
		return nil, errNoRows
	}
	table := domain.NewTable()
	for _, key := range keys {
		values := make([]domain.Value, len(records))
		for i, rec := range records {
			values[i] = rec[key]
		}
		if _, err := table.AddColumn(key, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// keyOrder accumulates column names in order of first appearance
type keyOrder struct {
	keys []string
	seen map[string]struct{}
}

func newKeyOrder() *keyOrder { return &keyOrder{seen: make(map[string]struct{})} }

func (k *keyOrder) add(key string) {
	if _, ok := k.seen[key]; ok {
		return
	}
	k.seen[key] = struct{}{}
	k.keys = append(k.keys, key)
}
