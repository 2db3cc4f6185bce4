package exporter

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

func sampleTable() *domain.Table {
	return domain.NewTable().
		MustAddColumn("name", domain.Text("Alice"), domain.Text("Bob, Jr."), domain.Null()).
		MustAddColumn("score", domain.Number(3.5), domain.Null(), domain.Number(1e-7)).
		MustAddColumn("count", domain.Number(2), domain.Number(40), domain.Number(math.Inf(1)))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "", want: FormatCSV},
		{in: "Excel", want: FormatExcel},
		{in: "xlsx", want: FormatExcel},
		{in: " json ", want: FormatJSON},
		{in: "parquet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "xlsx", FormatExcel.Extension())
	assert.Equal(t, "json", FormatJSON.Extension())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "3.5", formatFloat(3.5))
	assert.Equal(t, "40", formatFloat(40))
	assert.Equal(t, "0.0000001", formatFloat(1e-7))
	assert.Equal(t, "-inf", formatFloat(math.Inf(-1)))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tests := []struct {
		name string
		bom  bool
		want string
	}{
		{
			name: "without BOM",
			want: "name,score,count\nAlice,3.5,2\n\"Bob, Jr.\",,40\n,0.0000001,inf\n",
		},
		{
			name: "with BOM",
			bom:  true,
			want: "\xEF\xBB\xBFname,score,count\nAlice,3.5,2\n\"Bob, Jr.\",,40\n,0.0000001,inf\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			written, err := NewCSVWriter(nil, nil).WriteTable(path, sampleTable(), tt.bom)
			require.NoError(t, err)
			assert.Equal(t, path, written)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(content))
		})
	}
}

func TestExporter_ResolvesIntoProcessedDir(t *testing.T) {
	base := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: base})
	require.NoError(t, err)

	e := NewExporter(paths, false, nil)
	written, err := e.Export("processed_x.csv", FormatCSV, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, paths.GetProcessedPath("processed_x.csv"), written)
	assert.Equal(t, written, e.Target("processed_x.csv"))
	assert.FileExists(t, written)

	abs := filepath.Join(base, "elsewhere.csv")
	assert.Equal(t, abs, e.Target(abs))
	assert.Equal(t, "out.csv", NewExporter(nil, false, nil).Target("out.csv"))
}

func TestExcelWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	require.NoError(t, Export(path, FormatExcel, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"name", "score", "count"}, rows[0])
	assert.Equal(t, []string{"Alice", "3.5", "2"}, rows[1])
	assert.Equal(t, "Bob, Jr.", rows[2][0])
	assert.Equal(t, "40", rows[2][2])

	cellType, err := f.GetCellType(SheetName, "A2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, cellType)
}

func TestJSONWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Export(path, FormatJSON, sampleTable()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// key order follows column order
	assert.Contains(t, string(content), `{"name":"Alice","score":3.5,"count":2}`)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &records))
	require.Len(t, records, 3)
	assert.Nil(t, records[1]["score"])
	assert.Nil(t, records[2]["name"])
	assert.Nil(t, records[2]["count"], "infinity has no JSON form")
	assert.Equal(t, 40.0, records[1]["count"])
}

func TestJSONWriter_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, Export(path, FormatJSON, domain.NewTable().MustAddColumn("a")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(content))
}

func TestExport_Errors(t *testing.T) {
	err := Export(filepath.Join(t.TempDir(), "x.parquet"), Format("parquet"), sampleTable())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Error(t, Export("x.csv", FormatCSV, nil))
}
