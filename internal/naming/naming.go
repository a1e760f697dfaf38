// Package naming picks collision-free names for copied vault entries.
package naming

import (
	"fmt"
	"strings"
)

// Candidate returns the n-th copy name for stem: "<stem> <suffix>" for n == 1
// and "<stem> <suffix> <n>" after that. ext, when non-empty, is appended as
// ".<ext>".
func Candidate(stem, suffix, ext string, n int) string {
	name := stem + " " + suffix
	if n > 1 {
		name = fmt.Sprintf("%s %d", name, n)
	}
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

// CopyName returns the first Candidate that taken rejects. At most limit+1
// candidates are tried, so callers pass the number of names that could
// possibly collide and the search always terminates.
func CopyName(stem, suffix, ext string, limit int, taken func(string) bool) (string, error) {
	for n := 1; n <= limit+1; n++ {
		name := Candidate(stem, suffix, ext, n)
		if !taken(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free copy name for %q after %d attempts", stem, limit+1)
}

// Unique returns name itself when it is free, otherwise the first free copy
// name derived from it.
func Unique(stem, suffix, ext string, limit int, taken func(string) bool) (string, error) {
	name := stem
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	if !taken(name) {
		return name, nil
	}
	return CopyName(stem, suffix, ext, limit, taken)
}
