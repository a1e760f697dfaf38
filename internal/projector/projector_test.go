package projector

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/docvault/internal/types"
)

func size(n int64) *int64 { return &n }

func file(path, ext string) types.ScanNode {
	return types.ScanNode{Path: path, Ext: ext, Size: size(10)}
}

func dir(path string, children ...types.ScanNode) types.ScanNode {
	return types.ScanNode{Path: path, IsDir: true, Children: children}
}

// sampleTree:
//
//	/Work/a.md
//	/Work/Sub/b.pdf
//	/Empty/
//	/Nested/Deep/c.png     (Nested has only a subfolder)
//	/root.md
func sampleTree() []types.ScanNode {
	return []types.ScanNode{
		dir("/Work",
			file("/Work/a.md", "md"),
			dir("/Work/Sub", file("/Work/Sub/b.pdf", "pdf")),
		),
		dir("/Empty"),
		dir("/Nested", dir("/Nested/Deep", file("/Nested/Deep/c.png", "png"))),
		file("/root.md", "md"),
	}
}

func collectDirs(nodes []types.ScanNode, out *[]string) {
	for _, n := range nodes {
		if n.IsDir {
			*out = append(*out, n.Path)
			collectDirs(n.Children, out)
		}
	}
}

func TestProject_Scenario(t *testing.T) {
	tree := []types.ScanNode{
		dir("/Work", types.ScanNode{Name: "a", Path: "/Work/a.md", Ext: "md", FileType: "markdown"}),
		dir("/Empty"),
	}

	p := Project(tree, "/", "p1")

	require.Len(t, p.Documents, 1)
	doc := p.Documents[0]
	assert.Equal(t, "/Work/a.md", doc.Path)
	assert.Equal(t, doc.Path, doc.ID)
	assert.Equal(t, "/Work", doc.Folder)
	assert.Equal(t, "markdown", doc.Type)
	assert.Equal(t, "a", doc.Title)
	assert.Equal(t, "p1", doc.ProjectID)
	assert.Equal(t, []string{"/Empty"}, p.EmptyFolders)
}

func TestProject_DocumentCountMatchesFileNodes(t *testing.T) {
	tree := sampleTree()
	p := Project(tree, "/", "p1")
	assert.Equal(t, CountFiles(tree), len(p.Documents))
	assert.Equal(t, 4, len(p.Documents))
}

func TestProject_FolderIsImmediateParent(t *testing.T) {
	p := Project(sampleTree(), "/", "p1")

	want := map[string]string{
		"/Work/a.md":         "/Work",
		"/Work/Sub/b.pdf":    "/Work/Sub",
		"/Nested/Deep/c.png": "/Nested/Deep",
		"/root.md":           "/",
	}
	for _, doc := range p.Documents {
		assert.Equal(t, want[doc.Path], doc.Folder, doc.Path)
	}
}

func TestProject_EmptyFoldersUseDirectChildrenOnly(t *testing.T) {
	p := Project(sampleTree(), "/", "p1")

	// /Nested holds only a subfolder, so it counts as empty even though
	// /Nested/Deep contains a document. /Work has a direct file and is not
	// empty regardless of /Work/Sub.
	assert.ElementsMatch(t, []string{"/Empty", "/Nested"}, p.EmptyFolders)
	assert.NotContains(t, p.EmptyFolders, "/Work")
	assert.NotContains(t, p.EmptyFolders, "/Work/Sub")
	assert.NotContains(t, p.EmptyFolders, "/Nested/Deep")
}

func TestProject_FoldersReconstructScanDirectories(t *testing.T) {
	tree := sampleTree()
	p := Project(tree, "/", "p1")

	var dirs []string
	collectDirs(tree, &dirs)
	sort.Strings(dirs)

	assert.Equal(t, dirs, Folders(p.Documents, p.EmptyFolders))
}

func TestProject_Idempotent(t *testing.T) {
	tree := sampleTree()
	first := Project(tree, "/", "p1")
	second := Project(tree, "/", "p1")
	assert.Equal(t, first, second)
}

func TestProject_TypeResolution(t *testing.T) {
	tree := []types.ScanNode{
		{Path: "/a.md", Ext: "md", FileType: "markdown"},
		{Path: "/b.weird", Ext: "weird"},
		{Path: "/noext"},
		{Path: "/c.JPG"},
		{Path: "/d.bin", Ext: "bin", FileType: "hologram"},
	}

	p := Project(tree, "/", "")
	got := map[string]string{}
	for _, doc := range p.Documents {
		got[doc.Path] = doc.Type
	}

	assert.Equal(t, "markdown", got["/a.md"])
	assert.Equal(t, "file", got["/b.weird"])
	assert.Equal(t, "unknown", got["/noext"])
	assert.Equal(t, "image", got["/c.JPG"])
	assert.Equal(t, "unknown", got["/d.bin"])
}

func TestProject_EmptyInput(t *testing.T) {
	p := Project(nil, "/", "p1")
	assert.Empty(t, p.Documents)
	assert.Empty(t, p.EmptyFolders)
}

func TestRecord_TitleFallsBackToStem(t *testing.T) {
	rec := Record(types.ScanNode{Path: "Work/report.pdf"}, "Work", "p")
	assert.Equal(t, "report", rec.Title)
	assert.Equal(t, "/Work/report.pdf", rec.Path)
	assert.Equal(t, "/Work", rec.Folder)
	assert.Equal(t, "pdf", rec.FileExt)
	assert.Equal(t, int64(0), rec.FileSize)
}

func TestGroupByFolder(t *testing.T) {
	p := Project(sampleTree(), "/", "p1")
	groups := GroupByFolder(p.Documents)

	require.Len(t, groups, 4)
	assert.Equal(t, "/", groups[0].Folder)
	assert.Equal(t, "/Nested/Deep", groups[1].Folder)
	assert.Equal(t, "/Work", groups[2].Folder)
	assert.Equal(t, "/Work/Sub", groups[3].Folder)
	assert.Equal(t, "/root.md", groups[0].Documents[0].Path)
}
