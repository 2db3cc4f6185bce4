package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestDiscovery_FindByExtension(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "processed")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.csv"), 0755))

	now := time.Now()
	touch(t, dir, "old.csv", now.Add(-2*time.Hour))
	touch(t, dir, "new.XLSX", now)
	touch(t, dir, "mid.json", now.Add(-time.Hour))
	touch(t, dir, "notes.txt", now)
	touch(t, dir, ".hidden.csv", now)

	tests := []struct {
		name string
		dir  string
		exts []string
		want []string
	}{
		{name: "relative dir, filtered", dir: "processed", exts: []string{"csv", "xlsx"}, want: []string{"new.XLSX", "old.csv"}},
		{name: "absolute dir, dotted ext", dir: dir, exts: []string{".json"}, want: []string{"mid.json"}},
		{name: "no filter", dir: "processed", want: []string{"new.XLSX", "notes.txt", "mid.json", "old.csv"}},
		{name: "no match", dir: "processed", exts: []string{"xml"}, want: []string{}},
	}

	d := NewDiscovery(base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.FindByExtension(tt.dir, tt.exts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestDiscovery_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindByExtension("absent")
	assert.Error(t, err)
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Minute)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}

func TestManager_Listings(t *testing.T) {
	m, paths := newTestManager(t, 0)
	now := time.Now()
	touch(t, paths.ProcessedDir, "processed_a.csv", now.Add(-time.Minute))
	touch(t, paths.ProcessedDir, "processed_b.json", now)
	touch(t, paths.UploadsDir, "1234abcd_a.csv", now)
	touch(t, paths.UploadsDir, "1234abcd_a.exe", now)

	processed, err := m.ListProcessed()
	require.NoError(t, err)
	assert.Equal(t, []string{"processed_b.json", "processed_a.csv"}, names(processed))

	uploads, err := m.ListUploads()
	require.NoError(t, err)
	assert.Equal(t, []string{"1234abcd_a.csv"}, names(uploads))
}
