package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_SizeMatchesStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 hello"), 0o644))

	d := Describe(path, Options{})
	info, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, info.Size(), d.Size)
	assert.Equal(t, "Report.PDF", d.Name)
	assert.Equal(t, "pdf", d.Extension)
	assert.Equal(t, "application/pdf", d.MimeType)
	assert.Nil(t, d.Bytes)
}

func TestDescribe_MissingFileIsNotAnError(t *testing.T) {
	d := Describe(filepath.Join(t.TempDir(), "gone.bin"), Options{WithData: true})

	assert.Equal(t, int64(0), d.Size)
	assert.Nil(t, d.Bytes, "unreadable data is omitted")
	assert.Equal(t, "application/octet-stream", d.MimeType)
}

func TestDescribe_DataPathOverride(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "a.png")
	alt := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(orig, []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(alt, []byte("smaller"), 0o644))

	d := Describe(orig, Options{WithData: true, DataPath: alt})
	assert.Equal(t, orig, d.Path)
	assert.Equal(t, int64(len("original")), d.Size)
	assert.Equal(t, []byte("smaller"), d.Bytes)
}

func TestToMap(t *testing.T) {
	d := Descriptor{Path: "/p/x.jpg", Name: "x.jpg", Size: 3, MimeType: "image/jpeg", Extension: "jpg"}
	m := d.ToMap()
	_, hasBytes := m["bytes"]
	assert.False(t, hasBytes)
	assert.Equal(t, int64(3), m["size"])

	d.Bytes = []byte{1, 2, 3}
	assert.Equal(t, []byte{1, 2, 3}, d.ToMap()["bytes"])
}

func TestList(t *testing.T) {
	assert.Nil(t, List(nil))
	got := List([]Descriptor{{Name: "a"}, {Name: "b"}})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1]["name"])
}
