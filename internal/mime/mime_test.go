package mime

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeByExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"jpg", "image/jpeg"},
		{".JPEG", "image/jpeg"},
		{"*.png", "image/png"},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"woff2", "font/woff2"},
		{"yml", "text/yaml"},
		{"unknown", OctetStream},
		{"", OctetStream},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeByExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestTypeByPath(t *testing.T) {
	assert.Equal(t, "video/mp4", TypeByPath("/home/u/Clip.MP4"))
	assert.Equal(t, OctetStream, TypeByPath("/home/u/README"))
	assert.Equal(t, "mp4", Extension("/home/u/Clip.MP4"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("PNG"))
	assert.True(t, IsImage(".tif"))
	assert.False(t, IsImage("svg"), "vector images are not recompressed")
	assert.False(t, IsImage("pdf"))
}

func TestFilterFor(t *testing.T) {
	f := FilterFor(CategoryImage, nil)
	assert.Equal(t, "Image Files", f.Name)
	assert.Contains(t, f.Patterns, "*.webp")

	f = FilterFor(CategoryCustom, []string{"csv", ".TSV", " "})
	assert.Equal(t, "Custom Files", f.Name)
	assert.Equal(t, []string{"*.csv", "*.tsv"}, f.Patterns)

	f = FilterFor(CategoryCustom, nil)
	assert.True(t, f.MatchesAll(), "custom without extensions accepts everything")

	f = FilterFor(CategoryDocument, nil)
	assert.Contains(t, f.Patterns, "*.epub")
	assert.Contains(t, f.Patterns, "*.pdf")
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryVideo, ParseCategory("VIDEO"))
	assert.Equal(t, CategoryAny, ParseCategory("all"))
	assert.Equal(t, CategoryAny, ParseCategory(""))
	assert.Equal(t, CategoryCustom, ParseCategory("custom"))
}

func TestIsRasterContent(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	disguised := filepath.Join(dir, "photo.dat")
	require.NoError(t, os.WriteFile(disguised, buf.Bytes(), 0o644))

	text := filepath.Join(dir, "fake.png")
	require.NoError(t, os.WriteFile(text, []byte("not an image"), 0o644))

	assert.True(t, IsRasterContent(disguised))
	assert.False(t, IsRasterContent(text))
	assert.False(t, IsRasterContent(filepath.Join(dir, "missing.png")))
}
