// Package projector turns a vault scan tree into the flat document index.
package projector

import (
	"sort"

	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vpath"
)

// Projection is the flat view of one scan.
type Projection struct {
	Documents    []types.DocumentRecord
	EmptyFolders []string
}

// Project walks nodes depth-first and returns one DocumentRecord per file node
// plus the folders that have no direct file children. parentFolder is the
// folder the top-level nodes live in, normally vpath.Root.
//
// A folder is empty when none of its direct children are files, even if a
// subfolder further down holds documents.
func Project(nodes []types.ScanNode, parentFolder, projectID string) Projection {
	var p Projection
	p.walk(nodes, vpath.Normalize(parentFolder), projectID)
	return p
}

func (p *Projection) walk(nodes []types.ScanNode, parent, projectID string) {
	for _, node := range nodes {
		if node.IsDir {
			if !hasDirectFile(node.Children) {
				p.EmptyFolders = append(p.EmptyFolders, vpath.Normalize(node.Path))
			}
			p.walk(node.Children, vpath.Normalize(node.Path), projectID)
			continue
		}
		p.Documents = append(p.Documents, Record(node, parent, projectID))
	}
}

func hasDirectFile(children []types.ScanNode) bool {
	for _, c := range children {
		if !c.IsDir {
			return true
		}
	}
	return false
}

// Record builds the index entry for a single file node.
func Record(node types.ScanNode, folder, projectID string) types.DocumentRecord {
	path := vpath.Normalize(node.Path)
	ext := node.Ext
	if ext == "" {
		ext = vpath.Ext(path)
	}

	docType := string(filetype.Unknown)
	switch {
	case node.FileType != "":
		docType = string(filetype.Parse(node.FileType))
	case ext != "":
		docType = string(filetype.Classify(ext))
	}

	title := node.Name
	if title == "" {
		title = vpath.Stem(path)
	}

	return types.DocumentRecord{
		ID:        path,
		Path:      path,
		Title:     title,
		Folder:    vpath.Normalize(folder),
		Type:      docType,
		FileExt:   ext,
		FileSize:  node.SizeOf(),
		ProjectID: projectID,
	}
}

// GroupByFolder groups documents by folder, ordered by folder path. Documents
// keep their relative order within a group.
func GroupByFolder(docs []types.DocumentRecord) []types.FolderGroup {
	index := make(map[string]int)
	var groups []types.FolderGroup
	for _, doc := range docs {
		folder := doc.Folder
		if folder == "" {
			folder = vpath.Root
		}
		i, ok := index[folder]
		if !ok {
			i = len(groups)
			index[folder] = i
			groups = append(groups, types.FolderGroup{Folder: folder})
		}
		groups[i].Documents = append(groups[i].Documents, doc)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Folder < groups[j].Folder
	})
	return groups
}

// Folders returns every non-root folder referenced by docs and emptyFolders,
// including intermediate ancestors, sorted.
func Folders(docs []types.DocumentRecord, emptyFolders []string) []string {
	seen := make(map[string]bool)
	var add func(string)
	add = func(folder string) {
		folder = vpath.Normalize(folder)
		if folder == vpath.Root || seen[folder] {
			return
		}
		seen[folder] = true
		add(vpath.Parent(folder))
	}
	for _, doc := range docs {
		add(doc.Folder)
	}
	for _, f := range emptyFolders {
		add(f)
	}

	folders := make([]string, 0, len(seen))
	for f := range seen {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}

// CountFiles returns the number of file nodes in a scan tree.
func CountFiles(nodes []types.ScanNode) int {
	n := 0
	for _, node := range nodes {
		if node.IsDir {
			n += CountFiles(node.Children)
		} else {
			n++
		}
	}
	return n
}
