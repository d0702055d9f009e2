// Package mime holds the extension and dialog filter tables shared by the
// file picker and the camera, plus content sniffing for image payloads.
package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// OctetStream is returned for extensions the table does not know
const OctetStream = "application/octet-stream"

// JPEG is the type of every captured photo and recompressed image
const JPEG = "image/jpeg"

var byExtension = map[string]string{
	// Images
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "bmp": "image/bmp", "tiff": "image/tiff", "tif": "image/tiff",
	"webp": "image/webp", "svg": "image/svg+xml", "ico": "image/x-icon",
	"heic": "image/heic", "heif": "image/heif", "avif": "image/avif",

	// Videos
	"mp4": "video/mp4", "avi": "video/x-msvideo", "mov": "video/quicktime",
	"mkv": "video/x-matroska", "wmv": "video/x-ms-wmv", "flv": "video/x-flv",
	"webm": "video/webm", "3gp": "video/3gpp", "3g2": "video/3gpp2",

	// Audio
	"mp3": "audio/mpeg", "wav": "audio/wav", "m4a": "audio/mp4",
	"flac": "audio/flac", "ogg": "audio/ogg", "aac": "audio/aac",
	"midi": "audio/midi", "opus": "audio/opus", "aiff": "audio/x-aiff",

	// PDF and office
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",

	// Text
	"txt": "text/plain", "rtf": "text/rtf", "md": "text/markdown", "markdown": "text/markdown",

	// OpenDocument
	"odt": "application/vnd.oasis.opendocument.text",
	"ods": "application/vnd.oasis.opendocument.spreadsheet",
	"odp": "application/vnd.oasis.opendocument.presentation",

	// Web
	"html": "text/html", "htm": "text/html", "css": "text/css",
	"js": "text/javascript", "json": "application/json", "xml": "application/xml",
	"csv": "text/csv", "yaml": "text/yaml", "yml": "text/yaml",

	// Code
	"php": "application/x-httpd-php", "py": "text/x-python",
	"c": "text/x-c", "cpp": "text/x-c++", "java": "text/x-java-source",
	"sh": "application/x-sh", "pl": "text/x-perl", "rb": "text/x-ruby",
	"lua": "text/x-lua",

	// Archives
	"zip": "application/zip", "rar": "application/x-rar-compressed",
	"7z": "application/x-7z-compressed", "tar": "application/x-tar",
	"gz": "application/gzip", "bz2": "application/x-bzip2",

	// Fonts
	"ttf": "font/ttf", "otf": "font/otf", "woff": "font/woff", "woff2": "font/woff2",

	// Other
	"epub": "application/epub+zip",
}

// raster formats the recompressor can decode
var recompressible = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tiff": true, "tif": true, "webp": true,
}

// Extension returns the lower-cased extension of path without the dot
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// normalizeExt accepts "jpg", ".jpg", "JPG" and "*.jpg"
func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimPrefix(ext, "*")
	ext = strings.TrimPrefix(ext, ".")
	return strings.ToLower(ext)
}

// TypeByExtension looks up the MIME type for ext, falling back to OctetStream
func TypeByExtension(ext string) string {
	if t, ok := byExtension[normalizeExt(ext)]; ok {
		return t
	}
	return OctetStream
}

// TypeByPath is TypeByExtension applied to the path's extension
func TypeByPath(path string) string {
	return TypeByExtension(Extension(path))
}

// IsImage reports whether ext is a raster format eligible for recompression
func IsImage(ext string) bool {
	return recompressible[normalizeExt(ext)]
}

// IsRasterContent reports whether the file content is an image the
// recompressor can decode, regardless of its extension
func IsRasterContent(path string) bool {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for ; m != nil; m = m.Parent() {
		switch m.String() {
		case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff", "image/webp":
			return true
		}
	}
	return false
}
