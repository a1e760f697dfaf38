package types

import (
	"sort"
	"strings"
)

type (
	// ScanNode is one entry of a recursive vault scan. Path is the virtual
	// path from the vault root and identifies the entry. For files, Name is the
	// file name without its extension.
	ScanNode struct {
		Name     string     `json:"name"`
		Path     string     `json:"path"`
		IsDir    bool       `json:"is_dir"`
		FileType string     `json:"file_type,omitempty"`
		Ext      string     `json:"ext,omitempty"`
		Size     *int64     `json:"size,omitempty"`
		Children []ScanNode `json:"children,omitempty"`
	}

	// FileInfo describes a file brought into a vault by import.
	FileInfo struct {
		Filename string `json:"filename"` // name without extension
		FileType string `json:"fileType"`
		Ext      string `json:"ext"`
		Size     int64  `json:"size"`
		Path     string `json:"path"`
	}
)

// SizeOf returns the node's size, or zero when the backend did not report one.
func (n ScanNode) SizeOf() int64 {
	if n.Size == nil {
		return 0
	}
	return *n.Size
}

// SortScanNodes orders directories before files. Hidden directories sort
// after visible ones. Names compare case-insensitively.
func SortScanNodes(nodes []ScanNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if a.IsDir {
			aHidden, bHidden := strings.HasPrefix(a.Name, "."), strings.HasPrefix(b.Name, ".")
			if aHidden != bHidden {
				return bHidden
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
