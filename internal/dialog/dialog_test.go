package dialog

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwanFlutter/image-picker-master/internal/mime"
	"github.com/SwanFlutter/image-picker-master/internal/tempfiles"
)

// recordingChooser returns a scripted result and keeps the requests it saw
type recordingChooser struct {
	paths    []string
	err      error
	requests []Request
}

func (c *recordingChooser) Name() string { return "recording" }

func (c *recordingChooser) Choose(ctx context.Context, req Request) ([]string, error) {
	c.requests = append(c.requests, req)
	return c.paths, c.err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 31)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestPick_SingleSelection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta"), 0o644))

	p := NewPicker(NewStatic(a, b), nil, "", nil)
	got, err := p.Pick(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0].Path)
	assert.Equal(t, int64(5), got[0].Size)
	assert.Equal(t, "text/plain", got[0].MimeType)
	assert.Nil(t, got[0].Bytes)
}

func TestPick_MultipleWithData(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(a, []byte{1, 2, 3}, 0o644))
	missing := filepath.Join(dir, "gone.pdf")

	opts := DefaultOptions()
	opts.AllowMultiple = true
	opts.WithData = true
	got, err := NewPicker(NewStatic(a, missing), nil, "", nil).Pick(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte{1, 2, 3}, got[0].Bytes)
	assert.Equal(t, int64(0), got[1].Size, "stat failure yields size 0")
	assert.Nil(t, got[1].Bytes, "read failure omits bytes")
	assert.Equal(t, "application/pdf", got[1].MimeType)
}

func TestPick_CancelIsNotAnError(t *testing.T) {
	got, err := NewPicker(NewStatic(), nil, "", nil).Pick(context.Background(), DefaultOptions())
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = NewPicker(&recordingChooser{err: ErrCancelled}, nil, "", nil).Pick(context.Background(), DefaultOptions())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPick_ErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		multiple bool
		want     string
	}{
		{"unavailable", ErrUnavailable, false, CodePickerError},
		{"other", errors.New("crashed"), true, CodePickerError},
		{"bad single", ErrBadResult, false, CodeGetResultError},
		{"bad multiple", ErrBadResult, true, CodeGetResultsError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AllowMultiple = tt.multiple
			_, err := NewPicker(&recordingChooser{err: tt.err}, nil, "", nil).Pick(context.Background(), opts)

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.want, de.Code)
			assert.NotEmpty(t, de.Message)
		})
	}
}

func TestPick_CancelledContextIsProcessingError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPicker(&recordingChooser{paths: []string{"/tmp/x"}}, nil, "", nil).Pick(ctx, DefaultOptions())

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeProcessingError, de.Code)
}

func TestPick_RequestCarriesFilter(t *testing.T) {
	c := &recordingChooser{err: ErrCancelled}
	opts := DefaultOptions()
	opts.Category = mime.CategoryCustom
	opts.AllowedExtensions = []string{"csv"}
	opts.AllowMultiple = true

	_, err := NewPicker(c, nil, "Pick data", func() uint32 { return 0x2a00007 }).Pick(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, c.requests, 1)
	req := c.requests[0]
	assert.Equal(t, "Pick data", req.Title)
	assert.Equal(t, "Custom Files", req.Filter.Name)
	assert.Equal(t, []string{"*.csv"}, req.Filter.Patterns)
	assert.True(t, req.Multiple)
	assert.Equal(t, uint32(0x2a00007), req.ParentWindow)
}

func TestPick_RecompressesImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 32, 32)
	info, err := os.Stat(src)
	require.NoError(t, err)

	temp := tempfiles.NewManager(t.TempDir(), "pfx")
	opts := DefaultOptions()
	opts.WithData = true
	opts.CompressionQuality = 40

	got, err := NewPicker(NewStatic(src), temp, "", nil).Pick(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, src, d.Path, "path stays the original")
	assert.Equal(t, info.Size(), d.Size)
	assert.Equal(t, "image/png", d.MimeType)
	require.NotEmpty(t, d.Bytes)
	assert.Equal(t, []byte{0xff, 0xd8}, d.Bytes[:2], "bytes come from the JPEG copy")

	require.Len(t, temp.Paths(), 1)
	assert.Equal(t, 1, temp.Clear())
}

func TestPick_NoRecompression(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 8, 8)
	orig, err := os.ReadFile(src)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"compression disabled", func(o *Options) { o.AllowCompression = false }},
		{"quality 100", func(o *Options) { o.CompressionQuality = 100 }},
		{"quality above 100 clamps to 100", func(o *Options) { o.CompressionQuality = 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp := tempfiles.NewManager(t.TempDir(), "pfx")
			opts := DefaultOptions()
			opts.WithData = true
			tt.mutate(&opts)

			got, err := NewPicker(NewStatic(src), temp, "", nil).Pick(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, orig, got[0].Bytes)
			assert.Empty(t, temp.Paths())
		})
	}
}

func TestPick_UndecodableImageKeepsOriginalBytes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not really a jpeg"), 0o644))
	temp := tempfiles.NewManager(t.TempDir(), "pfx")

	opts := DefaultOptions()
	opts.WithData = true
	got, err := NewPicker(NewStatic(src), temp, "", nil).Pick(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("not really a jpeg"), got[0].Bytes)
	assert.Empty(t, temp.Paths(), "failed copy is not tracked")
}

func TestCommandChooser(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	script := func(s string) func(Request) []string {
		return func(Request) []string { return []string{"-c", s} }
	}

	c := &commandChooser{name: "sh", path: "sh", args: script("printf '/a/b.png\\n/c d/e.jpg\\n'"), cancelled: exitOne}
	paths, err := c.Choose(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b.png", "/c d/e.jpg"}, paths)

	c.args = script("exit 1")
	_, err = c.Choose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrCancelled)

	c.args = script("echo 'Gtk-WARNING: cannot open display' >&2; exit 5")
	_, err = c.Choose(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open display")

	c.args = script("echo relative.txt")
	_, err = c.Choose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrBadResult)

	c.args = script("true")
	_, err = c.Choose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrCancelled, "empty output is a cancel")

	c.path = "/nonexistent/zenity"
	_, err = c.Choose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestZenityArgs(t *testing.T) {
	req := Request{Title: "Select Files", Filter: mime.FilterFor(mime.CategoryCustom, []string{"png", "jpg"}), Multiple: true, ParentWindow: 42}
	args := zenityArgs(req)
	assert.Contains(t, args, "--multiple")
	assert.Contains(t, args, "--file-filter=Custom Files | *.png *.jpg")
	assert.Contains(t, args, "--attach=42")

	args = zenityArgs(Request{Title: "x", Filter: mime.FilterFor(mime.CategoryAny, nil)})
	assert.Equal(t, []string{"--file-selection", "--title=x", "--file-filter=All Files | *"}, args)
}

func TestKDialogArgs(t *testing.T) {
	args := kdialogArgs(Request{Title: "t", Filter: mime.FilterFor(mime.CategoryCustom, []string{"csv"}), Multiple: true})
	assert.Equal(t, []string{"--title", "t", "--getopenfilename", ".", "Custom Files (*.csv)", "--multiple", "--separate-output"}, args)
}

func TestAppleScriptArgs(t *testing.T) {
	args := appleScriptArgs(Request{Title: `Say "hi"`, Filter: mime.FilterFor(mime.CategoryCustom, []string{"png"}), Multiple: true})
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, `choose file with prompt "Say \"hi\"" of type {"png"} with multiple selections allowed`)
	assert.Equal(t, "-e", args[0])
}

func TestPowerShellArgs(t *testing.T) {
	args := powerShellArgs(Request{Title: "It's", Filter: mime.FilterFor(mime.CategoryCustom, []string{"png", "gif"})})
	require.Len(t, args, 4)
	assert.Contains(t, args[3], "$d.Title = 'It''s'")
	assert.Contains(t, args[3], "$d.Filter = 'Custom Files|*.png;*.gif|All Files|*.*'")
	assert.Contains(t, args[3], "$d.Multiselect = $false")
}

func TestParseResponse(t *testing.T) {
	ok := map[string]dbus.Variant{"uris": dbus.MakeVariant([]string{"file:///home/u/My%20Pics/a.png", "https://example.com/x"})}
	paths, err := parseResponse([]interface{}{uint32(0), ok})
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/u/My Pics/a.png"}, paths)

	_, err = parseResponse([]interface{}{uint32(1), map[string]dbus.Variant{}})
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = parseResponse([]interface{}{uint32(2), map[string]dbus.Variant{}})
	assert.Error(t, err)

	_, err = parseResponse([]interface{}{uint32(0), map[string]dbus.Variant{}})
	assert.ErrorIs(t, err, ErrBadResult)

	remote := map[string]dbus.Variant{"uris": dbus.MakeVariant([]string{"sftp://host/file"})}
	_, err = parseResponse([]interface{}{uint32(0), remote})
	assert.ErrorIs(t, err, ErrBadResult)

	_, err = parseResponse([]interface{}{"nope"})
	assert.ErrorIs(t, err, ErrBadResult)
}

func TestPortalFilters(t *testing.T) {
	assert.Nil(t, portalFilters(Request{Filter: mime.FilterFor(mime.CategoryAny, nil)}))

	f := portalFilters(Request{Filter: mime.FilterFor(mime.CategoryCustom, []string{"csv"})})
	require.Len(t, f, 2)
	assert.Equal(t, "Custom Files", f[0].Name)
	assert.Equal(t, []portalPattern{{Kind: patternGlob, Pattern: "*.csv"}}, f[0].Patterns)
	assert.Equal(t, "a(sa(us))", dbus.SignatureOf(f).String())
}

func TestWindowFromProperty(t *testing.T) {
	win, err := windowFromProperty([]byte{0x07, 0x00, 0xa0, 0x02})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x02a00007), win)

	_, err = windowFromProperty([]byte{1})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New("static", []string{"/x"})
	require.NoError(t, err)
	assert.Equal(t, "static", c.Name())

	c, err = New("", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendAuto, c.Name())

	_, err = New("gtk4", nil)
	assert.Error(t, err)
}

func TestAuto_FallsThrough(t *testing.T) {
	a := &Auto{probes: []func() (Chooser, error){
		func() (Chooser, error) { return nil, ErrUnavailable },
		func() (Chooser, error) { return NewStatic("/picked"), nil },
	}}
	paths, err := a.Choose(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/picked"}, paths)
	assert.Equal(t, "static", a.Name())

	none := &Auto{probes: []func() (Chooser, error){
		func() (Chooser, error) { return nil, errors.New("zenity not found") },
	}}
	_, err = none.Choose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
