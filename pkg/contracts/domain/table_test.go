package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		null   bool
		number bool
		text   bool
		str    string
		iface  interface{}
	}{
		{name: "null", value: Null(), null: true, str: "", iface: nil},
		{name: "NaN is null", value: Number(math.NaN()), null: true, str: "", iface: nil},
		{name: "integer", value: Number(25), number: true, str: "25", iface: 25.0},
		{name: "fraction", value: Number(0.5), number: true, str: "0.5", iface: 0.5},
		{name: "text", value: Text("Paris"), text: true, str: "Paris", iface: "Paris"},
		{name: "empty text is not null", value: Text(""), text: true, str: "", iface: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.null, tt.value.IsNull())
			assert.Equal(t, tt.number, tt.value.IsNumber())
			assert.Equal(t, tt.text, tt.value.IsText())
			assert.Equal(t, tt.str, tt.value.String())
			assert.Equal(t, tt.iface, tt.value.Interface())
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Number(1).Equal(Number(1)))
	assert.False(t, Number(1).Equal(Text("1")))
	assert.False(t, Text("a").Equal(Null()))
}

func TestColumn_InferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   Kind
	}{
		{name: "numbers with gaps", values: []Value{Number(1), Null(), Number(2)}, want: KindNumeric},
		{name: "mixed", values: []Value{Number(1), Text("x")}, want: KindText},
		{name: "all missing", values: []Value{Null(), Null()}, want: KindNull},
		{name: "no cells", values: nil, want: KindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Column{Name: "c", Values: tt.values}
			assert.Equal(t, tt.want, c.InferKind())
			assert.Equal(t, tt.want, c.Kind)
		})
	}
}

func TestTable_AddColumn(t *testing.T) {
	table := NewTable()
	_, err := table.AddColumn("a", []Value{Number(1), Number(2)})
	require.NoError(t, err)

	_, err = table.AddColumn("a", []Value{Number(1), Number(2)})
	assert.Error(t, err, "duplicate name")

	_, err = table.AddColumn("b", []Value{Number(1)})
	assert.Error(t, err, "length mismatch")

	assert.Equal(t, 2, table.Rows())
	assert.Equal(t, 1, table.Cols())
	assert.Panics(t, func() { table.MustAddColumn("short", Null()) })
}

func sampleTable() *Table {
	return NewTable().
		MustAddColumn("name", Text("Jean"), Text("Marie"), Text("Jean")).
		MustAddColumn("age", Number(25), Null(), Number(25)).
		MustAddColumn("city", Text("Paris"), Text("Lyon"), Text("Paris"))
}

func TestTable_Accessors(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []string{"name", "age", "city"}, table.ColumnNames())
	assert.Len(t, table.NumericColumns(), 1)
	assert.Len(t, table.TextColumns(), 2)

	_, ok := table.Column("missing")
	assert.False(t, ok)

	row := table.Row(1)
	assert.Equal(t, "Marie", row["name"].String())
	assert.True(t, row["age"].IsNull())

	assert.Equal(t, []map[string]interface{}{
		{"name": "Jean", "age": 25.0, "city": "Paris"},
		{"name": "Marie", "age": nil, "city": "Lyon"},
		{"name": "Jean", "age": 25.0, "city": "Paris"},
	}, table.Records())
}

func TestTable_RowKey(t *testing.T) {
	table := sampleTable()
	age, _ := table.Column("age")

	assert.Equal(t, table.RowKey(0, nil), table.RowKey(2, nil))
	assert.NotEqual(t, table.RowKey(0, nil), table.RowKey(1, nil))
	assert.NotEqual(t, table.RowKey(0, []*Column{age}), table.RowKey(1, []*Column{age}))

	texts := NewTable().MustAddColumn("v", Number(1), Text("1"))
	assert.NotEqual(t, texts.RowKey(0, nil), texts.RowKey(1, nil), "number and text never collide")
}

func TestTable_DropRowsAndClone(t *testing.T) {
	table := sampleTable()
	clone := table.Clone()

	removed := table.DropRows([]bool{false, true, false})
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, table.Rows())
	require.NoError(t, table.Validate())

	assert.Equal(t, 3, clone.Rows(), "clone is independent")
	age, _ := clone.Column("age")
	age.Values[0] = Number(99)
	original, _ := table.Column("age")
	assert.Equal(t, 25.0, original.Values[0].Num)

	assert.Equal(t, 0, table.DropRows([]bool{false, false}))
}

func TestTable_Validate(t *testing.T) {
	table := sampleTable()
	require.NoError(t, table.Validate())

	c, _ := table.Column("city")
	c.Values = c.Values[:1]
	assert.Error(t, table.Validate())
}
