// Package vpath manipulates vault-relative virtual paths.
//
// A virtual path is forward-slash separated and always rooted at the vault
// root ("/"). It is the identity of every file and folder in a vault and is
// independent of the physical location the backend maps it to.
package vpath

import (
	"path"
	"strings"
)

// Root is the virtual path of the vault root.
const Root = "/"

// Normalize converts p into canonical form: forward slashes, a single leading
// slash, no trailing slash, no "." or ".." segments. The empty string and "."
// normalize to Root. ".." segments never climb above Root.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || p == "." {
		return Root
	}
	return path.Clean("/" + p)
}

// IsRoot reports whether p refers to the vault root.
func IsRoot(p string) bool {
	return Normalize(p) == Root
}

// Join appends name to folder and normalizes the result.
func Join(folder string, elem ...string) string {
	parts := append([]string{Normalize(folder)}, elem...)
	return Normalize(path.Join(parts...))
}

// Parent returns the folder containing p. The parent of a root child, and of
// the root itself, is Root.
func Parent(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	return path.Dir(p)
}

// Base returns the last segment of p, or "" for the root.
func Base(p string) string {
	p = Normalize(p)
	if p == Root {
		return ""
	}
	return path.Base(p)
}

// Ext returns the lower-cased extension of p without the leading dot.
// Dot-files such as ".gitignore" have no extension.
func Ext(p string) string {
	name := Base(p)
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// Stem returns the last segment of p without its extension.
func Stem(p string) string {
	name := Base(p)
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name
	}
	return name[:idx]
}

// Within reports whether p equals prefix or lies below it.
func Within(p, prefix string) bool {
	p = Normalize(p)
	prefix = Normalize(prefix)
	if prefix == Root {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// ReplaceBase returns p with its last segment replaced by name.
func ReplaceBase(p, name string) string {
	return Join(Parent(p), name)
}

// Rebase moves p from under oldPrefix to under newPrefix. Paths outside
// oldPrefix are returned normalized but otherwise unchanged.
func Rebase(p, oldPrefix, newPrefix string) string {
	p = Normalize(p)
	if !Within(p, oldPrefix) {
		return p
	}
	rest := strings.TrimPrefix(p, Normalize(oldPrefix))
	return Join(newPrefix, rest)
}

// Relative strips the leading slash so p can be joined onto a physical root.
func Relative(p string) string {
	return strings.TrimPrefix(Normalize(p), "/")
}

// Depth returns the number of segments in p. Root has depth 0.
func Depth(p string) int {
	p = Normalize(p)
	if p == Root {
		return 0
	}
	return strings.Count(p, "/")
}
