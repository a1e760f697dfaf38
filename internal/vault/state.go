package vault

import (
	"github.com/taigrr/docvault/internal/types"
)

// State is the phase of a session's active document.
type State int

const (
	// Closed means no document is active.
	Closed State = iota
	// Opening means a document's content is being read.
	Opening
	// Open means a document is active. Snapshot.Dirty distinguishes unsaved
	// edits.
	Open
	// Saving means the active document is being written.
	Saving
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Saving:
		return "saving"
	default:
		return "closed"
	}
}

// ActiveDocument is the open document of a session.
type ActiveDocument struct {
	Record      types.DocumentRecord `json:"record"`
	Content     string               `json:"content,omitempty"`
	Binary      []byte               `json:"-"`
	Frontmatter map[string]any       `json:"frontmatter,omitempty"`
	Dirty       bool                 `json:"dirty"`
}

// Snapshot is a copy of a session's state. Holding one never blocks the
// session.
type Snapshot struct {
	ID           string                 `json:"id"`
	ProjectID    string                 `json:"project_id"`
	State        string                 `json:"state"`
	Documents    []types.DocumentRecord `json:"documents"`
	FileTree     []types.ScanNode       `json:"file_tree"`
	EmptyFolders []string               `json:"empty_folders"`
	ActivePath   string                 `json:"active_path,omitempty"`
	Dirty        bool                   `json:"dirty"`
	Loading      bool                   `json:"loading"`
	Saving       bool                   `json:"saving"`
	LastError    string                 `json:"last_error,omitempty"`
}

// LoadOptions controls a rescan.
type LoadOptions struct {
	// PreserveSelection keeps the active document when it is still present
	// after the rescan.
	PreserveSelection bool
}
