// Package pathfilter decides which vault entries a scan exposes.
package pathfilter

import (
	"regexp"
	"strings"

	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vpath"
)

// DefaultIgnored are the operating-system artifacts never shown in a vault.
var DefaultIgnored = []string{
	".DS_Store",
	"**/.DS_Store",
	"Thumbs.db",
	"**/Thumbs.db",
	"desktop.ini",
	"**/desktop.ini",
}

// PathFilter filters vault paths by glob patterns and, optionally, by file
// extension.
type PathFilter struct {
	ignored           []*regexp.Regexp
	allowedExtensions []string
}

// New creates a PathFilter with the default ignore list plus the patterns and
// extension allow-list from config. With no allowed extensions every file
// type passes.
func New(config *types.PathFilterConfig) *PathFilter {
	patterns := append([]string{}, DefaultIgnored...)
	pf := &PathFilter{}
	if config != nil {
		patterns = append(patterns, config.IgnoredPatterns...)
		for _, ext := range config.AllowedExtensions {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				pf.allowedExtensions = append(pf.allowedExtensions, ext)
			}
		}
	}
	for _, p := range patterns {
		if re, err := compileGlob(p); err == nil {
			pf.ignored = append(pf.ignored, re)
		}
	}
	return pf
}

// compileGlob converts a glob pattern to an anchored regex.
// ** matches across separators, * and ? stay within one segment.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	normalized := strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "/")

	expr := regexp.QuoteMeta(normalized)
	expr = strings.ReplaceAll(expr, `\*\*`, ".*")
	expr = strings.ReplaceAll(expr, `\*`, "[^/]*")
	expr = strings.ReplaceAll(expr, `\?`, "[^/]")

	return regexp.Compile("^" + expr + "$")
}

// IsIgnored reports whether a virtual path matches an ignore pattern.
func (pf *PathFilter) IsIgnored(path string) bool {
	rel := vpath.Relative(path)
	for _, re := range pf.ignored {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// IsAllowed reports whether an entry should be exposed. Directories are only
// checked against the ignore list; files must also carry an allowed
// extension when an allow-list is configured.
func (pf *PathFilter) IsAllowed(path string, isDir bool) bool {
	if pf.IsIgnored(path) {
		return false
	}
	if isDir || len(pf.allowedExtensions) == 0 {
		return true
	}
	ext := vpath.Ext(path)
	for _, allowed := range pf.allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
