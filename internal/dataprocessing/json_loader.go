package dataprocessing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// orderedObject is a JSON object that remembers key order
type orderedObject struct {
	keys   []string
	values map[string]interface{}
}

func newOrderedObject() *orderedObject {
	return &orderedObject{values: make(map[string]interface{})}
}

func (o *orderedObject) set(key string, v interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// MarshalJSON writes the object with its original key order
func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrdered parses one JSON document. Objects decode to *orderedObject,
// numbers to json.Number. Trailing content is an error.
func decodeOrdered(text string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := newOrderedObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			v, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []interface{}{}
		for dec.More() {
			v, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// jsonShapeKind is the closed set of document shapes turned into tables
type jsonShapeKind int

const (
	shapeRecords jsonShapeKind = iota
	shapeColumns
	shapeSingleRecord
)

func (k jsonShapeKind) String() string {
	switch k {
	case shapeRecords:
		return "records"
	case shapeColumns:
		return "columns"
	default:
		return "single-record"
	}
}

// jsonShape is a parsed document classified once
type jsonShape struct {
	kind    jsonShapeKind
	records []interface{}
	object  *orderedObject
}

// classifyJSON decides the shape of a decoded document: a list is records,
// an object of equal-length lists is columns, any other object is a single
// record
func classifyJSON(doc interface{}) (jsonShape, error) {
	switch t := doc.(type) {
	case []interface{}:
		return jsonShape{kind: shapeRecords, records: t}, nil
	case *orderedObject:
		if len(t.keys) > 0 && allLists(t) {
			return jsonShape{kind: shapeColumns, object: t}, nil
		}
		return jsonShape{kind: shapeSingleRecord, object: t}, nil
	}
	return jsonShape{}, fmt.Errorf("unsupported JSON document of type %T", doc)
}

func allLists(o *orderedObject) bool {
	for _, k := range o.keys {
		if _, ok := o.values[k].([]interface{}); !ok {
			return false
		}
	}
	return true
}

func (s jsonShape) table() (*domain.Table, error) {
	switch s.kind {
	case shapeRecords:
		return recordsTable(s.records)
	case shapeColumns:
		return columnsTable(s.object)
	default:
		return recordsTable([]interface{}{s.object})
	}
}

// recordsTable builds one row per element; scalar elements land in column
// "0". An empty list is an empty table.
func recordsTable(items []interface{}) (*domain.Table, error) {
	order := newKeyOrder()
	records := make([]map[string]domain.Value, 0, len(items))
	for _, item := range items {
		rec := make(map[string]domain.Value)
		if obj, ok := item.(*orderedObject); ok {
			for _, k := range obj.keys {
				order.add(k)
				rec[k] = coerceValue(obj.values[k])
			}
		} else {
			order.add("0")
			rec["0"] = coerceValue(item)
		}
		records = append(records, rec)
	}
	if len(order.keys) == 0 {
		return domain.NewTable(), nil
	}
	return tableFromRecords(order.keys, records)
}

// columnsTable builds a table from an object of equally long lists
func columnsTable(obj *orderedObject) (*domain.Table, error) {
	table := domain.NewTable()
	for _, k := range obj.keys {
		list := obj.values[k].([]interface{})
		values := make([]domain.Value, len(list))
		for i, item := range list {
			values[i] = coerceValue(item)
		}
		if _, err := table.AddColumn(k, values); err != nil {
			return nil, fmt.Errorf("column lists differ in length: %w", err)
		}
	}
	return table, nil
}

// indexedColumnsTable handles the columns orient: every value is an object
// keyed by row label. Row labels are ordered by first appearance.
func indexedColumnsTable(obj *orderedObject) (*domain.Table, error) {
	labels := newKeyOrder()
	for _, k := range obj.keys {
		inner, ok := obj.values[k].(*orderedObject)
		if !ok {
			return nil, fmt.Errorf("column %q is not an object", k)
		}
		for _, label := range inner.keys {
			labels.add(label)
		}
	}
	table := domain.NewTable()
	for _, k := range obj.keys {
		inner := obj.values[k].(*orderedObject)
		values := make([]domain.Value, len(labels.keys))
		for i, label := range labels.keys {
			values[i] = coerceValue(inner.values[label])
		}
		if _, err := table.AddColumn(k, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// parseJSONDirect accepts the layouts a dataframe reader takes without help:
// a list of records, an object of equal-length lists, or an object of
// objects keyed by row label. A flat object of scalars is rejected.
func parseJSONDirect(raw []byte) (*domain.Table, error) {
	text, err := decodeUTF8(raw)
	if err != nil {
		return nil, err
	}
	doc, err := decodeOrdered(text)
	if err != nil {
		return nil, err
	}
	switch t := doc.(type) {
	case []interface{}:
		return recordsTable(t)
	case *orderedObject:
		if len(t.keys) == 0 {
			return domain.NewTable(), nil
		}
		if allLists(t) {
			return columnsTable(t)
		}
		return indexedColumnsTable(t)
	}
	return nil, fmt.Errorf("unsupported JSON document of type %T", doc)
}

// parseJSONManual decodes with the given encoding, rejects empty content,
// classifies the document and builds the table
func parseJSONManual(raw []byte, enc textEncoding) (*domain.Table, error) {
	text, err := enc.decode(raw)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmptyContent
	}
	doc, err := decodeOrdered(text)
	if err != nil {
		return nil, err
	}
	shape, err := classifyJSON(doc)
	if err != nil {
		return nil, err
	}
	table, err := shape.table()
	if err != nil {
		return nil, fmt.Errorf("%s document: %w", shape.kind, err)
	}
	return table, nil
}

func (l *Loader) jsonStrategies(raw []byte) *ladder {
	lad := newLadder("json", l.logger)
	lad.add("json:direct", "", func() (*domain.Table, error) {
		return parseJSONDirect(raw)
	})
	for _, enc := range candidateEncodings {
		enc := enc
		lad.add("json:"+enc.name, enc.name, func() (*domain.Table, error) {
			return parseJSONManual(raw, enc)
		})
	}
	return lad
}
