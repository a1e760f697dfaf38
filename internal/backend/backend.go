// Package backend defines the storage boundary of a document vault.
//
// Every path crossing this boundary is a virtual path (see package vpath).
// Implementations normalize the paths they receive and report failures as
// *vaulterr.Error values.
package backend

import (
	"context"
	"strings"

	"github.com/taigrr/docvault/internal/types"
)

// Backend stores one vault per project.
type Backend interface {
	// EnsureInitialized creates the project's vault if it does not exist.
	EnsureInitialized(ctx context.Context, projectID string) error

	// Scan returns the project's complete tree. Directories come first,
	// then files, each ordered by name.
	Scan(ctx context.Context, projectID string) ([]types.ScanNode, error)

	ReadText(ctx context.Context, projectID, path string) (string, error)
	ReadBinary(ctx context.Context, projectID, path string) ([]byte, error)

	// WriteText creates or overwrites a text document, creating missing
	// parent folders.
	WriteText(ctx context.Context, projectID, path, content string) error

	// CreateText creates a new text document. It fails with AlreadyExists
	// when path is taken.
	CreateText(ctx context.Context, projectID, path, content string) error

	// CreateFolder creates a folder and any missing parents. It fails with
	// AlreadyExists when the folder is already present.
	CreateFolder(ctx context.Context, projectID, path string) error

	// Copy duplicates source into targetFolder under a free name and returns
	// the new path.
	Copy(ctx context.Context, projectID, source, targetFolder string) (string, error)

	// Move relocates source into targetFolder keeping its name and returns
	// the new path.
	Move(ctx context.Context, projectID, source, targetFolder string) (string, error)

	// Rename moves oldPath to newPath. Folders carry their whole subtree.
	Rename(ctx context.Context, projectID, oldPath, newPath string) error

	// Delete removes a file, or a folder with its subtree. Deleting a
	// missing path succeeds.
	Delete(ctx context.Context, projectID, path string) error

	// ImportExternalFile copies a file from the host filesystem into
	// targetFolder.
	ImportExternalFile(ctx context.Context, projectID, source, targetFolder string) (types.FileInfo, error)
}

// AttachmentStore is implemented by backends that keep files on disk.
type AttachmentStore interface {
	// SaveAttachment writes data under the vault's attachment folder and
	// returns the path to reference it by from markdown.
	SaveAttachment(ctx context.Context, projectID, filename string, data []byte) (string, error)

	// AbsolutePath resolves a virtual path to its location on disk.
	AbsolutePath(projectID, path string) (string, error)
}

// Mode names a storage backend implementation.
type Mode string

const (
	// ModeFilesystem stores each project as a directory tree on disk.
	ModeFilesystem Mode = "filesystem"
	// ModeLegacy stores documents as rows of a SQLite database.
	ModeLegacy Mode = "legacy"
)

// ParseMode maps a config value onto a Mode, ignoring case and surrounding
// space. Anything unrecognized selects the filesystem.
func ParseMode(s string) Mode {
	mode, _ := lookupMode(s)
	return mode
}

// KnownMode reports whether s names a backend. The empty string selects the
// default.
func KnownMode(s string) bool {
	_, ok := lookupMode(s)
	return ok
}

func lookupMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLegacy, "sqlite", "database":
		return ModeLegacy, true
	case ModeFilesystem, "":
		return ModeFilesystem, true
	default:
		return ModeFilesystem, false
	}
}
