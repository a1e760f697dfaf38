package vault

import (
	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vpath"
)

// selection is the outcome of reconciling the active document with a fresh
// index. Path is empty when the session should close.
type selection struct {
	Path string
	// Kept is set when Path is the previously active document, possibly
	// relocated by a rename or move.
	Kept bool
}

// plan describes how a rescan reconciles the active document.
type plan struct {
	// preserve keeps the previous document when it is still indexed. With no
	// previous document the session stays closed.
	preserve bool
	// open names a document to activate instead of the previous one.
	open string
	// follow maps the previous active path to where a mutation put it.
	follow func(string) string
	// closeMissing closes the session instead of falling back when the
	// previous document vanished.
	closeMissing bool
}

// fallback picks the first markdown record, else the first record.
func fallback(docs []types.DocumentRecord) string {
	for _, doc := range docs {
		if filetype.Parse(doc.Type) == filetype.Markdown {
			return doc.Path
		}
	}
	if len(docs) > 0 {
		return docs[0].Path
	}
	return ""
}

func indexOf(docs []types.DocumentRecord, path string) int {
	for i, doc := range docs {
		if doc.Path == path {
			return i
		}
	}
	return -1
}

// reconcile resolves which document is active after a rescan.
func reconcile(docs []types.DocumentRecord, previous string, p plan) selection {
	if p.open != "" {
		if path := vpath.Normalize(p.open); indexOf(docs, path) >= 0 {
			return selection{Path: path, Kept: path == previous}
		}
	}

	if p.preserve {
		if previous == "" {
			return selection{}
		}
		current := previous
		if p.follow != nil {
			current = p.follow(previous)
		}
		if indexOf(docs, current) >= 0 {
			return selection{Path: current, Kept: true}
		}
		if p.closeMissing {
			return selection{}
		}
	}

	return selection{Path: fallback(docs)}
}

// followRename returns a follow func for a document or folder that moved from
// oldPath to newPath.
func followRename(oldPath, newPath string) func(string) string {
	return func(active string) string {
		if vpath.Within(active, oldPath) {
			return vpath.Rebase(active, oldPath, newPath)
		}
		return active
	}
}
