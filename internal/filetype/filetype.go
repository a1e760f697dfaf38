// Package filetype classifies vault files by extension.
package filetype

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Type is the document category derived from a file extension.
type Type string

const (
	Markdown Type = "markdown"
	PDF      Type = "pdf"
	Image    Type = "image"
	Text     Type = "text"
	Code     Type = "code"
	Archive  Type = "archive"
	Office   Type = "office"
	Audio    Type = "audio"
	Video    Type = "video"
	File     Type = "file"
	Unknown  Type = "unknown"
)

var table = map[string]Type{}

func register(t Type, exts ...string) {
	for _, ext := range exts {
		table[ext] = t
	}
}

func init() {
	register(Markdown, "md", "markdown")
	register(PDF, "pdf")
	register(Image, "png", "jpg", "jpeg", "gif", "webp", "svg", "bmp", "ico")
	register(Text, "txt", "log", "json", "xml", "yaml", "yml", "toml", "ini", "cfg", "conf")
	register(Code,
		"js", "ts", "jsx", "tsx", "vue", "html", "css", "scss", "less",
		"rs", "py", "java", "c", "cpp", "h", "hpp", "go", "rb", "php", "swift", "kt")
	register(Archive, "zip", "rar", "7z", "tar", "gz", "bz2")
	register(Office, "doc", "docx", "xls", "xlsx", "ppt", "pptx")
	register(Audio, "mp3", "wav", "ogg", "flac", "aac", "m4a")
	register(Video, "mp4", "avi", "mkv", "mov", "wmv", "flv", "webm")
}

// Classify returns the type for ext. The extension may carry a leading dot and
// is matched case-insensitively. Unlisted extensions are File; an empty
// extension is File as well.
func Classify(ext string) Type {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if t, ok := table[ext]; ok {
		return t
	}
	return File
}

// Parse converts a stored type name back into a Type. Unrecognized names
// become Unknown.
func Parse(s string) Type {
	switch t := Type(strings.ToLower(s)); t {
	case Markdown, PDF, Image, Text, Code, Archive, Office, Audio, Video, File:
		return t
	default:
		return Unknown
	}
}

// Editable reports whether documents of type t can be edited and saved.
func (t Type) Editable() bool {
	return t == Markdown
}

// Binary reports whether documents of type t are loaded as raw bytes.
func (t Type) Binary() bool {
	return t == PDF || t == Image
}

// Previewable reports whether an open document of type t has content to show.
func (t Type) Previewable() bool {
	return t == Markdown || t.Binary()
}

var mimeTypes = map[string]string{
	"md":       "text/markdown",
	"markdown": "text/markdown",
	"pdf":      "application/pdf",
	"png":      "image/png",
	"jpg":      "image/jpeg",
	"jpeg":     "image/jpeg",
	"gif":      "image/gif",
	"webp":     "image/webp",
	"svg":      "image/svg+xml",
	"bmp":      "image/bmp",
	"ico":      "image/x-icon",
}

// MIMEType returns the content type for ext, defaulting to
// application/octet-stream.
func MIMEType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return m
	}
	return "application/octet-stream"
}

// Importable reports whether a file with the given name may be imported into
// a vault: markdown, PDF and images only.
func Importable(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	t := Classify(filename[idx+1:])
	return slices.Contains([]Type{Markdown, PDF, Image}, t)
}

// FormatSize renders bytes in B, KB, MB or GB with at most two decimals.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := min(int(math.Floor(math.Log(float64(bytes))/math.Log(1024))), len(units)-1)
	v := float64(bytes) / math.Pow(1024, float64(i))
	return fmt.Sprintf("%s %s", strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64), units[i])
}
