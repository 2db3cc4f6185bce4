package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a column
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindNull    Kind = "null"
)

// Value is a single cell. The zero value is null.
type Value struct {
	Num   float64
	Text  string
	valid bool
	text  bool
}

// Null returns a missing cell
func Null() Value { return Value{} }

// Number returns a numeric cell. NaN is stored as null.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{Num: f, valid: true}
}

// Text returns a textual cell
func Text(s string) Value { return Value{Text: s, valid: true, text: true} }

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool { return !v.valid }

// IsNumber reports whether the cell holds a number
func (v Value) IsNumber() bool { return v.valid && !v.text }

// IsText reports whether the cell holds text
func (v Value) IsText() bool { return v.valid && v.text }

// String renders the cell the way exports print it; null renders empty
func (v Value) String() string {
	switch {
	case !v.valid:
		return ""
	case v.text:
		return v.Text
	default:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
}

// Interface returns nil, float64 or string
func (v Value) Interface() interface{} {
	switch {
	case !v.valid:
		return nil
	case v.text:
		return v.Text
	default:
		return v.Num
	}
}

// Equal compares two cells; two nulls are equal
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid || v.text != o.text {
		return false
	}
	if !v.valid {
		return true
	}
	if v.text {
		return v.Text == o.Text
	}
	return v.Num == o.Num
}

// key is used to build row identity keys
func (v Value) key() string {
	switch {
	case !v.valid:
		return "\x00"
	case v.text:
		return "s" + v.Text
	default:
		return "n" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
}

// Column is a named sequence of cells aligned by row index
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"-"`
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Floats returns the non-null numeric cells in row order
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.IsNumber() {
			out = append(out, v.Num)
		}
	}
	return out
}

// InferKind sets Kind from the cells: numeric when every non-null cell is a
// number, text when any is text, null when all are missing
func (c *Column) InferKind() Kind {
	kind := KindNull
	for _, v := range c.Values {
		if v.IsText() {
			kind = KindText
			break
		}
		if v.IsNumber() {
			kind = KindNumeric
		}
	}
	c.Kind = kind
	return kind
}

// Table is an ordered set of equally long columns
type Table struct {
	columns []*Column
	index   map[string]int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends a column. Names must be unique and lengths must match
// the columns already present.
func (t *Table) AddColumn(name string, values []Value) (*Column, error) {
	if _, exists := t.index[name]; exists {
		return nil, fmt.Errorf("duplicate column %q", name)
	}
	if len(t.columns) > 0 && len(values) != t.Rows() {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.Rows())
	}
	col := &Column{Name: name, Values: values}
	col.InferKind()
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, col)
	return col, nil
}

// MustAddColumn is AddColumn for fixed tables built in code
func (t *Table) MustAddColumn(name string, values ...Value) *Table {
	if _, err := t.AddColumn(name, values); err != nil {
		panic(err)
	}
	return t
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Rows returns the row count
func (t *Table) Rows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// Cols returns the column count
func (t *Table) Cols() int { return len(t.columns) }

// ColumnsOfKind returns the columns with the given kind, in order
func (t *Table) ColumnsOfKind(kind Kind) []*Column {
	var out []*Column
	for _, c := range t.columns {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumns returns the numeric columns in order
func (t *Table) NumericColumns() []*Column { return t.ColumnsOfKind(KindNumeric) }

// TextColumns returns the text columns in order
func (t *Table) TextColumns() []*Column { return t.ColumnsOfKind(KindText) }

// InferKinds re-derives every column's kind from its cells
func (t *Table) InferKinds() {
	for _, c := range t.columns {
		c.InferKind()
	}
}

// Row returns the cells of row i keyed by column name
func (t *Table) Row(i int) map[string]Value {
	row := make(map[string]Value, len(t.columns))
	for _, c := range t.columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// RowKey builds an identity key for row i over the given columns (all
// columns when cols is empty). Rows with equal keys are exact duplicates.
func (t *Table) RowKey(i int, cols []*Column) string {
	if len(cols) == 0 {
		cols = t.columns
	}
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(c.Values[i].key())
		b.WriteByte('\x1f')
	}
	return b.String()
}

// DropRows removes every row whose mask entry is true
func (t *Table) DropRows(drop []bool) int {
	removed := 0
	for _, d := range drop {
		if d {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	for _, c := range t.columns {
		kept := make([]Value, 0, len(c.Values)-removed)
		for i, v := range c.Values {
			if !drop[i] {
				kept = append(kept, v)
			}
		}
		c.Values = kept
	}
	return removed
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := NewTable()
	for _, c := range t.columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, &Column{Name: c.Name, Kind: c.Kind, Values: values})
	}
	return out
}

// Validate checks that every column has the same length
func (t *Table) Validate() error {
	rows := t.Rows()
	for _, c := range t.columns {
		if len(c.Values) != rows {
			return fmt.Errorf("column %q has %d values, expected %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}

// Records returns the table as a slice of row maps, nulls as nil
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, t.Rows())
	for i := range out {
		rec := make(map[string]interface{}, len(t.columns))
		for _, c := range t.columns {
			rec[c.Name] = c.Values[i].Interface()
		}
		out[i] = rec
	}
	return out
}
