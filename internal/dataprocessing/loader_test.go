package dataprocessing

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Zeyna175/data-processor-app/internal/shared/testutil"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

func newTestLoader(t *testing.T) *Loader {
	logger, _ := testutil.NewTestLogger(t)
	return NewLoader(logger)
}

func column(t *testing.T, table *domain.Table, name string) *domain.Column {
	t.Helper()
	c, ok := table.Column(name)
	require.True(t, ok, "column %q missing, have %v", name, table.ColumnNames())
	return c
}

func TestLoader_CSV(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		strategy    string
		columns     []string
		rows        int
		placeholder bool
	}{
		{
			name:     "comma separated",
			raw:      "name,age\nJean,25\nMarie,30\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"name", "age"},
			rows:     2,
		},
		{
			name:     "semicolon separated",
			raw:      "name;age;city\nJean;25;Paris\nMarie;30;Lyon\n",
			strategy: "csv:utf-8:sniffed",
			columns:  []string{"name", "age", "city"},
			rows:     2,
		},
		{
			name:     "latin-1 bytes",
			raw:      "name,city\nJos\xe9,Paris\n",
			strategy: "csv:latin-1:comma",
			columns:  []string{"name", "city"},
			rows:     1,
		},
		{
			name:     "utf-8 byte order mark",
			raw:      "\xef\xbb\xbfname,age\nJean,25\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"name", "age"},
			rows:     1,
		},
		{
			name:     "wide rows skipped, short rows padded",
			raw:      "a,b\n1,2\n1,2,3\n4\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"a", "b"},
			rows:     2,
		},
		{
			name:     "blank and duplicate headers",
			raw:      "a,a,\n1,2,3\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"a", "a.1", "Unnamed: 2"},
			rows:     1,
		},
		{
			name:     "single column whose header holds a colon",
			raw:      "time: hh\n10\n11\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"time: hh"},
			rows:     2,
		},
		{
			name:     "single column whose header holds a semicolon",
			raw:      "total; eur\n10\n11\n12\n",
			strategy: "csv:utf-8:comma",
			columns:  []string{"total; eur"},
			rows:     3,
		},
		{
			name:        "empty file falls back to placeholder",
			raw:         "",
			strategy:    "placeholder:csv",
			columns:     []string{"name", "age", "salary"},
			rows:        3,
			placeholder: true,
		},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loader.LoadBytes(context.Background(), []byte(tt.raw), domain.FileTypeCSV)
			require.NoError(t, err)

			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.placeholder, res.Placeholder)
			assert.Equal(t, tt.columns, res.Table.ColumnNames())
			assert.Equal(t, tt.rows, res.Table.Rows())
		})
	}
}

func TestLoader_CSVCells(t *testing.T) {
	loader := newTestLoader(t)
	res, err := loader.LoadBytes(context.Background(),
		[]byte("name,age,note\nJos\xe9,25,NA\nMarie, 30 ,\n"), domain.FileTypeCSV)
	require.NoError(t, err)

	name := column(t, res.Table, "name")
	assert.Equal(t, "José", name.Values[0].String())
	assert.Equal(t, domain.KindText, name.Kind)

	age := column(t, res.Table, "age")
	assert.Equal(t, domain.KindNumeric, age.Kind)
	assert.Equal(t, []float64{25, 30}, age.Floats())

	note := column(t, res.Table, "note")
	assert.Equal(t, 2, note.NullCount())
	assert.Equal(t, domain.KindNull, note.Kind)
}

func TestLoader_JSON(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		strategy    string
		columns     []string
		rows        int
		placeholder bool
	}{
		{
			name:     "list of records",
			raw:      `[{"name":"Jean","age":25},{"name":"Marie","city":"Lyon"}]`,
			strategy: "json:direct",
			columns:  []string{"name", "age", "city"},
			rows:     2,
		},
		{
			name:     "object of lists",
			raw:      `{"a":[1,2,3],"b":["x","y","z"]}`,
			strategy: "json:direct",
			columns:  []string{"a", "b"},
			rows:     3,
		},
		{
			name:     "object of row objects",
			raw:      `{"a":{"0":1,"1":2},"b":{"0":"x","1":"y"}}`,
			strategy: "json:direct",
			columns:  []string{"a", "b"},
			rows:     2,
		},
		{
			name:     "single flat record",
			raw:      `{"name":"Jean","age":25}`,
			strategy: "json:utf-8",
			columns:  []string{"name", "age"},
			rows:     1,
		},
		{
			name:     "key order preserved",
			raw:      `[{"zeta":1,"alpha":2}]`,
			strategy: "json:direct",
			columns:  []string{"zeta", "alpha"},
			rows:     1,
		},
		{
			name:     "scalar list",
			raw:      `[1,2,3]`,
			strategy: "json:direct",
			columns:  []string{"0"},
			rows:     3,
		},
		{
			name:     "empty list is an empty table",
			raw:      `[]`,
			strategy: "json:direct",
			columns:  []string{},
			rows:     0,
		},
		{
			name:     "empty object is an empty table",
			raw:      `{}`,
			strategy: "json:direct",
			columns:  []string{},
			rows:     0,
		},
		{
			name:        "malformed falls back to placeholder",
			raw:         `{not json`,
			strategy:    "placeholder:json",
			columns:     []string{"name", "age", "salary", "city"},
			rows:        5,
			placeholder: true,
		},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loader.LoadBytes(context.Background(), []byte(tt.raw), domain.FileTypeJSON)
			require.NoError(t, err)

			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.placeholder, res.Placeholder)
			assert.Equal(t, tt.columns, res.Table.ColumnNames())
			assert.Equal(t, tt.rows, res.Table.Rows())
		})
	}
}

func TestLoader_JSONValues(t *testing.T) {
	loader := newTestLoader(t)
	res, err := loader.LoadBytes(context.Background(),
		[]byte(`[{"n":"42","nested":{"x":1},"flag":true,"missing":null}]`), domain.FileTypeJSON)
	require.NoError(t, err)

	n := column(t, res.Table, "n")
	assert.True(t, n.Values[0].IsNumber())
	assert.Equal(t, 42.0, n.Values[0].Num)
	assert.Equal(t, `{"x":1}`, column(t, res.Table, "nested").Values[0].String())
	assert.Equal(t, "true", column(t, res.Table, "flag").Values[0].String())
	assert.True(t, column(t, res.Table, "missing").Values[0].IsNull())
}

func TestLoader_XML(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		strategy    string
		columns     []string
		rows        int
		placeholder bool
	}{
		{
			name:     "row elements",
			raw:      `<root><row><name>Jean</name><age>25</age></row><row><name>Marie</name><age>30</age></row></root>`,
			strategy: "xml:tree",
			columns:  []string{"name", "age"},
			rows:     2,
		},
		{
			name:     "html entities need the lenient reader",
			raw:      `<?xml version="1.0"?><root><row id="1"><name>Jean&nbsp;D</name></row></root>`,
			strategy: "xml:generic",
			columns:  []string{"id", "name"},
			rows:     1,
		},
		{
			name:        "not xml falls back to placeholder",
			raw:         `just some text`,
			strategy:    "placeholder:xml",
			columns:     []string{"column1", "column2"},
			rows:        2,
			placeholder: true,
		},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loader.LoadBytes(context.Background(), []byte(tt.raw), domain.FileTypeXML)
			require.NoError(t, err)

			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.placeholder, res.Placeholder)
			assert.Equal(t, tt.columns, res.Table.ColumnNames())
			assert.Equal(t, tt.rows, res.Table.Rows())
		})
	}
}

func TestLoader_XMLElementText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Value
	}{
		{
			name: "text after a nested element is ignored",
			raw:  `<root><row><name>Jean<x/>tail</name></row></root>`,
			want: domain.Text("Jean"),
		},
		{
			name: "whitespace text is kept",
			raw:  `<root><row><name>  </name></row></root>`,
			want: domain.Text("  "),
		},
		{
			name: "empty element is missing",
			raw:  `<root><row><name/></row></root>`,
			want: domain.Null(),
		},
		{
			name: "numeric text",
			raw:  `<root><row><name> 42 </name></row></root>`,
			want: domain.Number(42),
		},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loader.LoadBytes(context.Background(), []byte(tt.raw), domain.FileTypeXML)
			require.NoError(t, err)
			assert.Equal(t, "xml:tree", res.Strategy)

			name := column(t, res.Table, "name")
			require.Len(t, name.Values, 1)
			assert.True(t, tt.want.Equal(name.Values[0]), "got %v", name.Values[0])
		})
	}
}

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoader_Excel(t *testing.T) {
	raw := workbook(t,
		[]interface{}{"name", "age"},
		[]interface{}{"Jean", 25},
		[]interface{}{"Marie", 30, "extra"},
	)

	loader := newTestLoader(t)
	res, err := loader.LoadBytes(context.Background(), raw, domain.FileTypeExcel)
	require.NoError(t, err)

	assert.Equal(t, excelStrategy, res.Strategy)
	assert.False(t, res.Placeholder)
	assert.Equal(t, []string{"name", "age", "Unnamed: 2"}, res.Table.ColumnNames())
	assert.Equal(t, []float64{25, 30}, column(t, res.Table, "age").Floats())

	_, err = loader.LoadBytes(context.Background(), []byte("not a workbook"), domain.FileTypeExcel)
	var le *LoadError
	assert.ErrorAs(t, err, &le)

	legacy := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, "biff"...)
	_, err = loader.LoadBytes(context.Background(), legacy, domain.FileTypeExcel)
	assert.ErrorIs(t, err, ErrLegacyWorkbook)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nJean,25\n"), 0o644))

	loader := newTestLoader(t)
	ctx := context.Background()

	res, err := loader.Load(ctx, path, domain.FileTypeCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Rows())

	_, err = loader.Load(ctx, path, domain.FileType("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = loader.Load(ctx, filepath.Join(dir, "missing.csv"), domain.FileTypeCSV)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, le.Path, "missing.csv")
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{name: "tab", text: "a\tb\tc\n1\t2\t3\n", want: '\t'},
		{name: "pipe", text: "a|b\n1|2\n", want: '|'},
		{name: "quoted commas ignored", text: "a;b\n\"1,5\";2\n", want: ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sniffDelimiter(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := sniffDelimiter("single\ncolumn\n")
	assert.Error(t, err)
}

func TestLoader_PlaceholderDeterministic(t *testing.T) {
	loader := newTestLoader(t)
	garbage := []byte("\x00\x01 definitely { not json")

	first, err := loader.LoadBytes(context.Background(), garbage, domain.FileTypeJSON)
	require.NoError(t, err)
	second, err := loader.LoadBytes(context.Background(), garbage, domain.FileTypeJSON)
	require.NoError(t, err)

	assert.True(t, first.Placeholder)
	assert.Equal(t, first.Table.Records(), second.Table.Records())
	assert.Equal(t, 150.0, column(t, first.Table, "age").Values[4].Num)
}
