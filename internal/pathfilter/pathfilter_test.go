package pathfilter

import (
	"testing"

	"github.com/taigrr/docvault/internal/types"
)

func TestPathFilter_AllowsEveryFileTypeByDefault(t *testing.T) {
	filter := New(nil)

	tests := []string{
		"/notes/test.md",
		"/paper.pdf",
		"/images/photo.png",
		"/code/main.go",
		"/no-extension",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if !filter.IsAllowed(path, false) {
				t.Errorf("IsAllowed(%q) = false, want true", path)
			}
		})
	}
}

func TestPathFilter_AllowsHiddenFolders(t *testing.T) {
	filter := New(nil)

	if !filter.IsAllowed("/.attachments", true) {
		t.Error("IsAllowed(/.attachments) = false, want true")
	}
	if !filter.IsAllowed("/.attachments/img.png", false) {
		t.Error("IsAllowed(/.attachments/img.png) = false, want true")
	}
}

func TestPathFilter_BlocksSystemFiles(t *testing.T) {
	filter := New(nil)

	tests := []string{
		"/.DS_Store",
		"/Thumbs.db",
		"/desktop.ini",
		"/Work/.DS_Store",
		"/a/b/c/Thumbs.db",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if filter.IsAllowed(path, false) {
				t.Errorf("IsAllowed(%q) = true, want false", path)
			}
		})
	}
}

func TestPathFilter_CustomIgnoredPatterns(t *testing.T) {
	filter := New(&types.PathFilterConfig{
		IgnoredPatterns: []string{".git/**", ".git", "*.tmp", "drafts/?.md"},
	})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"/.git", true, false},
		{"/.git/config", false, false},
		{"/scratch.tmp", false, false},
		{"/sub/scratch.tmp", false, true},
		{"/drafts/a.md", false, false},
		{"/drafts/ab.md", false, true},
		{"/notes.md", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.IsAllowed(tt.path, tt.isDir); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathFilter_AllowedExtensions(t *testing.T) {
	filter := New(&types.PathFilterConfig{
		AllowedExtensions: []string{".md", "PDF"},
	})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"/a.md", false, true},
		{"/b.pdf", false, true},
		{"/c.png", false, false},
		{"/folder.png", true, true},
		{"/README", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.IsAllowed(tt.path, tt.isDir); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathFilter_RegexSpecialCharacters(t *testing.T) {
	filter := New(&types.PathFilterConfig{
		IgnoredPatterns: []string{"archive (old)/**"},
	})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"dots in filenames", "/file.name.md", true},
		{"brackets", "/notes/[draft].md", true},
		{"literal parentheses pattern", "/archive (old)/x.md", false},
		{"similar name", "/archive old/x.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsAllowed(tt.path, false); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
