package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/docvault/internal/types"
)

func TestReconcile(t *testing.T) {
	docs := []types.DocumentRecord{
		{Path: "/Work/scan.pdf", Type: "pdf"},
		{Path: "/Work/a.md", Type: "markdown"},
		{Path: "/b.md", Type: "markdown"},
	}

	tests := []struct {
		name     string
		docs     []types.DocumentRecord
		previous string
		plan     plan
		want     selection
	}{
		{"preserved match", docs, "/b.md", plan{preserve: true}, selection{Path: "/b.md", Kept: true}},
		{"not preserving falls back", docs, "/b.md", plan{}, selection{Path: "/Work/a.md"}},
		{"vanished falls back", docs, "/gone.md", plan{preserve: true}, selection{Path: "/Work/a.md"}},
		{"vanished closes", docs, "/gone.md", plan{preserve: true, closeMissing: true}, selection{}},
		{"nothing active stays closed", docs, "", plan{preserve: true}, selection{}},
		{"nothing active stays closed on delete", docs, "", plan{preserve: true, closeMissing: true}, selection{}},
		{"nothing active falls back on plain load", docs, "", plan{}, selection{Path: "/Work/a.md"}},
		{"nothing active opens explicit path", docs, "", plan{preserve: true, open: "/b.md"}, selection{Path: "/b.md"}},
		{"no markdown takes first", docs[:1], "", plan{}, selection{Path: "/Work/scan.pdf"}},
		{"empty index closes", nil, "/b.md", plan{preserve: true}, selection{}},
		{"explicit open wins", docs, "/b.md", plan{preserve: true, open: "Work/scan.pdf"}, selection{Path: "/Work/scan.pdf"}},
		{"explicit open missing keeps previous", docs, "/b.md", plan{preserve: true, open: "/nope.md"}, selection{Path: "/b.md", Kept: true}},
		{
			"followed rename",
			docs, "/Old/a.md",
			plan{preserve: true, follow: followRename("/Old", "/Work")},
			selection{Path: "/Work/a.md", Kept: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile(tt.docs, tt.previous, tt.plan))
		})
	}
}

func TestFollowRename(t *testing.T) {
	f := followRename("/A", "/B")
	assert.Equal(t, "/B/x.md", f("/A/x.md"))
	assert.Equal(t, "/B/C/y.md", f("/A/C/y.md"))
	assert.Equal(t, "/Ab.md", f("/Ab.md"))

	doc := followRename("/a.md", "/Archive/a.md")
	assert.Equal(t, "/Archive/a.md", doc("/a.md"))
	assert.Equal(t, "/b.md", doc("/b.md"))
}
