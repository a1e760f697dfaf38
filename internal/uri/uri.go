// Package uri builds links that point at vault documents from outside the
// engine: file URLs for the host, Obsidian URIs, and markdown embeds.
package uri

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/taigrr/docvault/internal/vpath"
)

func escapeSegments(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// File returns the file:// URL of an absolute host path.
func File(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// Obsidian returns an obsidian:// URI opening the document at the virtual
// path docPath of the vault stored in vaultDir. Markdown extensions are
// dropped since Obsidian resolves them itself.
func Obsidian(vaultDir, docPath string) string {
	abs := strings.TrimSuffix(filepath.ToSlash(vaultDir), "/") + vpath.Normalize(docPath)
	abs = strings.TrimSuffix(abs, ".md")
	return "obsidian:///" + strings.TrimPrefix(escapeSegments(abs), "/")
}

// Embed returns the markdown reference for an attachment path as returned by
// SaveAttachment. Images are embedded, anything else is linked.
func Embed(attachmentPath string, image bool) string {
	name := vpath.Stem(attachmentPath)
	target := escapeSegments(strings.TrimPrefix(attachmentPath, "/"))
	if image {
		return "![" + name + "](" + target + ")"
	}
	return "[" + name + "](" + target + ")"
}
