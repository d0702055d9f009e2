// Package files defines the descriptor returned for every picked or captured file.
package files

import (
	"os"
	"path/filepath"

	"github.com/SwanFlutter/image-picker-master/internal/mime"
)

// Descriptor describes one picked or captured file. It is built once and
// handed to the caller; nothing mutates it afterwards.
type Descriptor struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Bytes     []byte `json:"bytes,omitempty"`
}

// Options controls how Describe fills the optional fields
type Options struct {
	// WithData reads the file content into Bytes
	WithData bool
	// DataPath, when set, is read for Bytes instead of the described file
	// (the recompressed copy of a picked image)
	DataPath string
	// MimeType overrides the extension lookup
	MimeType string
}

// Describe stats path and builds its descriptor. A failed stat yields
// size 0 and a failed read leaves Bytes nil; neither is an error.
func Describe(path string, opts Options) Descriptor {
	d := Descriptor{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: mime.Extension(path),
		MimeType:  opts.MimeType,
	}
	if d.MimeType == "" {
		d.MimeType = mime.TypeByPath(path)
	}

	if info, err := os.Stat(path); err == nil {
		d.Size = info.Size()
	}

	if opts.WithData {
		src := path
		if opts.DataPath != "" {
			src = opts.DataPath
		}
		if data, err := os.ReadFile(src); err == nil {
			d.Bytes = data
		}
	}

	return d
}

// ToMap encodes the descriptor for the method channel. The "bytes" key is
// present only when data was requested and could be read.
func (d Descriptor) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"path":      d.Path,
		"name":      d.Name,
		"size":      d.Size,
		"mimeType":  d.MimeType,
		"extension": d.Extension,
	}
	if d.Bytes != nil {
		m["bytes"] = d.Bytes
	}
	return m
}

// List encodes descriptors as a channel payload, or nil when there are none
func List(ds []Descriptor) []map[string]interface{} {
	if len(ds) == 0 {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ToMap())
	}
	return out
}
