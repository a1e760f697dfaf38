package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/naming"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

// fakeBackend is an in-memory backend that records every call.
type fakeBackend struct {
	mu       sync.Mutex
	files    map[string][]byte
	folders  map[string]bool
	calls    []string
	failures map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		files:    make(map[string][]byte),
		folders:  make(map[string]bool),
		failures: make(map[string]error),
	}
}

// seed adds files and folders without recording calls. Paths ending in "/"
// are folders.
func (f *fakeBackend) seed(paths ...string) *fakeBackend {
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			f.folders[vpath.Normalize(p)] = true
			continue
		}
		f.files[vpath.Normalize(p)] = []byte("# " + vpath.Stem(p) + "\n")
	}
	return f
}

func (f *fakeBackend) record(op string) error {
	f.calls = append(f.calls, op)
	return f.failures[op]
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeBackend) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeBackend) exists(p string) bool {
	if _, ok := f.files[p]; ok {
		return true
	}
	return f.isDir(p)
}

func (f *fakeBackend) isDir(p string) bool {
	if f.folders[p] {
		return true
	}
	for d := range f.folders {
		if vpath.Within(d, p) {
			return true
		}
	}
	for file := range f.files {
		if file != p && vpath.Within(file, p) {
			return true
		}
	}
	return false
}

func (f *fakeBackend) EnsureInitialized(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("init")
}

func (f *fakeBackend) Scan(context.Context, string) ([]types.ScanNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("scan"); err != nil {
		return nil, err
	}

	dirs := make(map[string]bool)
	for d := range f.folders {
		for ; !vpath.IsRoot(d); d = vpath.Parent(d) {
			dirs[d] = true
		}
	}
	for p := range f.files {
		for d := vpath.Parent(p); !vpath.IsRoot(d); d = vpath.Parent(d) {
			dirs[d] = true
		}
	}
	return f.children(vpath.Root, dirs), nil
}

func (f *fakeBackend) children(parent string, dirs map[string]bool) []types.ScanNode {
	var nodes []types.ScanNode
	for d := range dirs {
		if vpath.Parent(d) == parent {
			nodes = append(nodes, types.ScanNode{
				Name:     vpath.Base(d),
				Path:     d,
				IsDir:    true,
				Children: f.children(d, dirs),
			})
		}
	}
	for p, data := range f.files {
		if vpath.Parent(p) != parent {
			continue
		}
		size := int64(len(data))
		ext := vpath.Ext(p)
		nodes = append(nodes, types.ScanNode{
			Name:     vpath.Stem(p),
			Path:     p,
			FileType: string(filetype.Classify(ext)),
			Ext:      ext,
			Size:     &size,
		})
	}
	types.SortScanNodes(nodes)
	return nodes
}

func (f *fakeBackend) ReadText(_ context.Context, _, path string) (string, error) {
	data, err := f.ReadBinary(context.Background(), "", path)
	return string(data), err
}

func (f *fakeBackend) ReadBinary(_ context.Context, _, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("read"); err != nil {
		return nil, err
	}
	data, ok := f.files[vpath.Normalize(path)]
	if !ok {
		return nil, vaulterr.E(vaulterr.NotFound, "read", path, nil)
	}
	return data, nil
}

func (f *fakeBackend) WriteText(_ context.Context, _, path, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("write"); err != nil {
		return err
	}
	f.files[vpath.Normalize(path)] = []byte(content)
	return nil
}

func (f *fakeBackend) CreateText(_ context.Context, _, path, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return err
	}
	path = vpath.Normalize(path)
	if f.exists(path) {
		return vaulterr.E(vaulterr.AlreadyExists, "create", path, nil)
	}
	f.files[path] = []byte(content)
	return nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, _, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create folder"); err != nil {
		return err
	}
	path = vpath.Normalize(path)
	if f.exists(path) {
		return vaulterr.Exists("create folder", path, true, nil)
	}
	f.folders[path] = true
	return nil
}

func (f *fakeBackend) Copy(_ context.Context, _, source, targetFolder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("copy"); err != nil {
		return "", err
	}
	source = vpath.Normalize(source)
	data, ok := f.files[source]
	if !ok {
		return "", vaulterr.E(vaulterr.NotFound, "copy", source, nil)
	}
	taken := func(name string) bool { return f.exists(vpath.Join(targetFolder, name)) }
	name, err := naming.Unique(vpath.Stem(source), "copy", vpath.Ext(source), len(f.files), taken)
	if err != nil {
		return "", err
	}
	target := vpath.Join(targetFolder, name)
	f.files[target] = data
	return target, nil
}

func (f *fakeBackend) Move(ctx context.Context, projectID, source, targetFolder string) (string, error) {
	target := vpath.Join(targetFolder, vpath.Base(source))
	f.mu.Lock()
	f.calls = append(f.calls, "move")
	f.mu.Unlock()
	return target, f.Rename(ctx, projectID, source, target)
}

func (f *fakeBackend) Rename(_ context.Context, _, oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("rename"); err != nil {
		return err
	}
	oldPath, newPath = vpath.Normalize(oldPath), vpath.Normalize(newPath)
	if !f.exists(oldPath) {
		return vaulterr.E(vaulterr.NotFound, "rename", oldPath, nil)
	}
	if f.exists(newPath) {
		return vaulterr.Exists("rename", newPath, f.isDir(oldPath), nil)
	}
	for p, data := range f.files {
		if vpath.Within(p, oldPath) {
			delete(f.files, p)
			f.files[vpath.Rebase(p, oldPath, newPath)] = data
		}
	}
	for d := range f.folders {
		if vpath.Within(d, oldPath) {
			delete(f.folders, d)
			f.folders[vpath.Rebase(d, oldPath, newPath)] = true
		}
	}
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, _, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete"); err != nil {
		return err
	}
	path = vpath.Normalize(path)
	for p := range f.files {
		if vpath.Within(p, path) {
			delete(f.files, p)
		}
	}
	for d := range f.folders {
		if vpath.Within(d, path) {
			delete(f.folders, d)
		}
	}
	return nil
}

func (f *fakeBackend) ImportExternalFile(_ context.Context, _, source, targetFolder string) (types.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("import"); err != nil {
		return types.FileInfo{}, err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return types.FileInfo{}, vaulterr.E(vaulterr.NotFound, "import", source, err)
	}
	name := filepath.Base(source)
	target := vpath.Join(targetFolder, name)
	if f.exists(target) {
		return types.FileInfo{}, vaulterr.E(vaulterr.AlreadyExists, "import", target, nil)
	}
	f.files[target] = data
	ext := vpath.Ext(name)
	return types.FileInfo{
		Filename: vpath.Stem(name),
		FileType: string(filetype.Classify(ext)),
		Ext:      ext,
		Size:     int64(len(data)),
		Path:     target,
	}, nil
}

// attachmentBackend adds the attachment capability to fakeBackend.
type attachmentBackend struct {
	*fakeBackend
}

func (a attachmentBackend) SaveAttachment(_ context.Context, _, filename string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.record("attachment"); err != nil {
		return "", err
	}
	a.files[vpath.Join("/.attachments", filename)] = data
	return ".attachments/" + filename, nil
}

func (a attachmentBackend) AbsolutePath(_, path string) (string, error) {
	return filepath.Join("/vaults", vpath.Relative(path)), nil
}
