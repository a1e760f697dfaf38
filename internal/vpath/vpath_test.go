package vpath

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty is root", in: "", want: "/"},
		{name: "dot is root", in: ".", want: "/"},
		{name: "missing leading slash", in: "notes/a.md", want: "/notes/a.md"},
		{name: "trailing slash", in: "/notes/", want: "/notes"},
		{name: "backslashes", in: `notes\sub\a.md`, want: "/notes/sub/a.md"},
		{name: "whitespace", in: "  /a.md  ", want: "/a.md"},
		{name: "double slashes", in: "//a//b", want: "/a/b"},
		{name: "dot dot cannot escape", in: "/../../etc/passwd", want: "/etc/passwd"},
		{name: "dot dot inside", in: "/a/b/../c", want: "/a/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParentBaseExtStem(t *testing.T) {
	tests := []struct {
		in     string
		parent string
		base   string
		ext    string
		stem   string
	}{
		{in: "/", parent: "/", base: "", ext: "", stem: ""},
		{in: "/a.md", parent: "/", base: "a.md", ext: "md", stem: "a"},
		{in: "/Work/Report.PDF", parent: "/Work", base: "Report.PDF", ext: "pdf", stem: "Report"},
		{in: "/Work/archive.tar.gz", parent: "/Work", base: "archive.tar.gz", ext: "gz", stem: "archive.tar"},
		{in: "/.attachments", parent: "/", base: ".attachments", ext: "", stem: ".attachments"},
		{in: "/a/b/noext", parent: "/a/b", base: "noext", ext: "", stem: "noext"},
		{in: "/a/trailing.", parent: "/a", base: "trailing.", ext: "", stem: "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parent(tt.in); got != tt.parent {
				t.Errorf("Parent() = %q, want %q", got, tt.parent)
			}
			if got := Base(tt.in); got != tt.base {
				t.Errorf("Base() = %q, want %q", got, tt.base)
			}
			if got := Ext(tt.in); got != tt.ext {
				t.Errorf("Ext() = %q, want %q", got, tt.ext)
			}
			if got := Stem(tt.in); got != tt.stem {
				t.Errorf("Stem() = %q, want %q", got, tt.stem)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join("/", "Notes.md"); got != "/Notes.md" {
		t.Errorf("Join(/, Notes.md) = %q", got)
	}
	if got := Join("Work", "sub", "a.md"); got != "/Work/sub/a.md" {
		t.Errorf("Join(Work, sub, a.md) = %q", got)
	}
	if got := Join("/Work/"); got != "/Work" {
		t.Errorf("Join(/Work/) = %q", got)
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		p, prefix string
		want      bool
	}{
		{"/A/x.md", "/A", true},
		{"/A", "/A", true},
		{"/A/B/y.md", "/A", true},
		{"/AB/x.md", "/A", false},
		{"/x.md", "/", true},
		{"/A", "/A/B", false},
	}

	for _, tt := range tests {
		if got := Within(tt.p, tt.prefix); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", tt.p, tt.prefix, got, tt.want)
		}
	}
}

func TestReplaceBaseAndRebase(t *testing.T) {
	if got := ReplaceBase("/A", "A2"); got != "/A2" {
		t.Errorf("ReplaceBase(/A, A2) = %q", got)
	}
	if got := ReplaceBase("/x/y/A", "B"); got != "/x/y/B" {
		t.Errorf("ReplaceBase(/x/y/A, B) = %q", got)
	}

	tests := []struct {
		p, from, to, want string
	}{
		{"/A/x.md", "/A", "/A2", "/A2/x.md"},
		{"/A/B/y.md", "/A", "/A2", "/A2/B/y.md"},
		{"/A", "/A", "/A2", "/A2"},
		{"/AB/z.md", "/A", "/A2", "/AB/z.md"},
		{"/x.md", "/", "/archive", "/archive/x.md"},
	}
	for _, tt := range tests {
		if got := Rebase(tt.p, tt.from, tt.to); got != tt.want {
			t.Errorf("Rebase(%q, %q, %q) = %q, want %q", tt.p, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRelativeAndDepth(t *testing.T) {
	if got := Relative("/a/b.md"); got != "a/b.md" {
		t.Errorf("Relative() = %q", got)
	}
	if got := Relative("/"); got != "" {
		t.Errorf("Relative(/) = %q", got)
	}
	if got := Depth("/"); got != 0 {
		t.Errorf("Depth(/) = %d", got)
	}
	if got := Depth("/a/b/c.md"); got != 3 {
		t.Errorf("Depth(/a/b/c.md) = %d", got)
	}
}
