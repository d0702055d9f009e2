package mime

import (
	"strings"
)

// Category is the logical file-type tag sent as the pickFiles "type" argument
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryCustom   Category = "custom"
	CategoryAny      Category = "any"
)

// ParseCategory maps the wire tag to a Category. "all" and unknown tags are CategoryAny.
func ParseCategory(tag string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(tag))) {
	case CategoryImage:
		return CategoryImage
	case CategoryVideo:
		return CategoryVideo
	case CategoryAudio:
		return CategoryAudio
	case CategoryDocument:
		return CategoryDocument
	case CategoryCustom:
		return CategoryCustom
	default:
		return CategoryAny
	}
}

// Filter is one named dialog filter; Patterns are glob patterns like "*.png"
type Filter struct {
	Name     string
	Patterns []string
}

// MatchesAll reports whether the filter accepts every file
func (f Filter) MatchesAll() bool {
	return len(f.Patterns) == 1 && f.Patterns[0] == "*"
}

var (
	imageExts    = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}
	videoExts    = []string{"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm"}
	audioExts    = []string{"mp3", "wav", "aiff", "m4a", "flac", "ogg"}
	documentExts = []string{
		"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
		"txt", "rtf", "md", "markdown",
		"odt", "ods", "odp",
		"html", "htm", "css", "js", "json", "xml", "csv", "yaml", "yml",
		"php", "py", "c", "cpp", "java", "sh", "pl", "rb", "lua",
		"zip", "rar", "7z", "tar", "gz", "bz2",
		"ttf", "otf", "woff", "woff2",
		"epub",
	}
)

func patterns(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		if n := normalizeExt(e); n != "" {
			out = append(out, "*."+n)
		}
	}
	return out
}

// FilterFor returns the dialog filter for a category. Custom with no
// usable extensions degrades to the all-files filter.
func FilterFor(category Category, allowedExtensions []string) Filter {
	switch category {
	case CategoryImage:
		return Filter{Name: "Image Files", Patterns: patterns(imageExts)}
	case CategoryVideo:
		return Filter{Name: "Video Files", Patterns: patterns(videoExts)}
	case CategoryAudio:
		return Filter{Name: "Audio Files", Patterns: patterns(audioExts)}
	case CategoryDocument:
		return Filter{Name: "Document Files", Patterns: patterns(documentExts)}
	case CategoryCustom:
		if p := patterns(allowedExtensions); len(p) > 0 {
			return Filter{Name: "Custom Files", Patterns: p}
		}
	}
	return Filter{Name: "All Files", Patterns: []string{"*"}}
}
