// Package types defines the data structures shared by the vault engine, its
// backends and the MCP server.
package types

type (
	// DocumentRecord is one file in a project's flat index. ID and Path are
	// identical; the virtual path is the primary key.
	DocumentRecord struct {
		ID        string `json:"id"`
		Path      string `json:"path"`
		Title     string `json:"title"`
		Folder    string `json:"folder"`
		Type      string `json:"type"`
		FileExt   string `json:"file_ext,omitempty"`
		FileSize  int64  `json:"file_size"`
		ProjectID string `json:"project_id"`
	}

	// FolderGroup is the documents directly inside one folder.
	FolderGroup struct {
		Folder    string           `json:"folder"`
		Documents []DocumentRecord `json:"documents"`
	}

	// ParsedNote represents a parsed markdown note with frontmatter.
	ParsedNote struct {
		Frontmatter     map[string]any `json:"frontmatter"`
		Content         string         `json:"content"`
		OriginalContent string         `json:"originalContent"`
	}
)
