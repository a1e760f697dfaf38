// Package filesystem stores document vaults as directory trees on disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/naming"
	"github.com/taigrr/docvault/internal/pathfilter"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

// AttachmentsDir is the hidden folder holding images embedded in markdown.
const AttachmentsDir = ".attachments"

var (
	_ backend.Backend         = (*Service)(nil)
	_ backend.AttachmentStore = (*Service)(nil)
)

// Service maps every project to the directory <baseDir>/<projectID>.
type Service struct {
	baseDir    string
	pathFilter *pathfilter.PathFilter
	locale     vaulterr.Locale
}

// New creates a new Service rooted at baseDir.
func New(baseDir string, pf *pathfilter.PathFilter, locale vaulterr.Locale) *Service {
	absPath, _ := filepath.Abs(baseDir)
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	return &Service{
		baseDir:    absPath,
		pathFilter: pf,
		locale:     locale,
	}
}

// BaseDir returns the directory holding all project vaults.
func (s *Service) BaseDir() string {
	return s.baseDir
}

// VaultDir returns the physical root of a project's vault.
func (s *Service) VaultDir(projectID string) (string, error) {
	id := strings.TrimSpace(projectID)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", vaulterr.Invalid("resolve", "invalid project id %q", projectID)
	}
	return filepath.Join(s.baseDir, id), nil
}

// ResolvePath resolves a virtual path within a project's vault and validates
// it.
func (s *Service) ResolvePath(projectID, virtualPath string) (string, error) {
	vaultDir, err := s.VaultDir(projectID)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(vaultDir, filepath.FromSlash(vpath.Relative(virtualPath)))
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", vaulterr.E(vaulterr.BackendFailure, "resolve", virtualPath, err)
	}

	// Security check: ensure path is within vault
	relPath, err := filepath.Rel(vaultDir, absPath)
	if err != nil {
		return "", vaulterr.E(vaulterr.BackendFailure, "resolve", virtualPath, err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", vaulterr.Invalid("resolve", "path traversal not allowed: %s", virtualPath)
	}

	return absPath, nil
}

// AbsolutePath implements backend.AttachmentStore.
func (s *Service) AbsolutePath(projectID, virtualPath string) (string, error) {
	return s.ResolvePath(projectID, virtualPath)
}

// EnsureInitialized creates the vault directory and its attachment folder.
func (s *Service) EnsureInitialized(_ context.Context, projectID string) error {
	vaultDir, err := s.VaultDir(projectID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(vaultDir, AttachmentsDir), 0o755); err != nil {
		return wrap("init", vpath.Root, err)
	}
	return nil
}

// Scan walks the whole vault. A vault that was never initialized scans as
// empty.
func (s *Service) Scan(ctx context.Context, projectID string) ([]types.ScanNode, error) {
	vaultDir, err := s.VaultDir(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(vaultDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return s.scanDir(ctx, vaultDir, vpath.Root)
}

func (s *Service) scanDir(ctx context.Context, dir, virtualDir string) ([]types.ScanNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrap("scan", virtualDir, err)
	}

	nodes := make([]types.ScanNode, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		entryPath := vpath.Join(virtualDir, name)
		fullPath := filepath.Join(dir, name)

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(fullPath)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		if !s.pathFilter.IsAllowed(entryPath, isDir) {
			continue
		}

		if isDir {
			children, err := s.scanDir(ctx, fullPath, entryPath)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, types.ScanNode{
				Name:     name,
				Path:     entryPath,
				IsDir:    true,
				Children: children,
			})
			continue
		}

		node := types.ScanNode{
			Name: vpath.Stem(entryPath),
			Path: entryPath,
		}
		if ext := vpath.Ext(entryPath); ext != "" {
			node.Ext = ext
			node.FileType = string(filetype.Classify(ext))
		}
		if info, err := entry.Info(); err == nil {
			size := info.Size()
			node.Size = &size
		}
		nodes = append(nodes, node)
	}

	types.SortScanNodes(nodes)
	return nodes, nil
}

// ReadText reads a document as text.
func (s *Service) ReadText(ctx context.Context, projectID, path string) (string, error) {
	data, err := s.read("read", projectID, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBinary reads a document as raw bytes.
func (s *Service) ReadBinary(_ context.Context, projectID, path string) ([]byte, error) {
	return s.read("read binary", projectID, path)
}

func (s *Service) read(op, projectID, path string) ([]byte, error) {
	fullPath, err := s.ResolvePath(projectID, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, wrap(op, path, err)
	}
	if info.IsDir() {
		return nil, vaulterr.Invalid(op, "cannot read directory as file: %s", vpath.Normalize(path))
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, wrap(op, path, err)
	}
	return data, nil
}

// WriteText writes content to path, replacing any existing file.
func (s *Service) WriteText(_ context.Context, projectID, path, content string) error {
	fullPath, err := s.ResolvePath(projectID, path)
	if err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("write", "path is required")
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return wrap("write", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return wrap("write", path, err)
	}
	return nil
}

// CreateText writes a new file and refuses to replace an existing one.
func (s *Service) CreateText(_ context.Context, projectID, path, content string) error {
	fullPath, err := s.ResolvePath(projectID, path)
	if err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("create", "path is required")
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return wrap("create", path, err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return wrap("create", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return wrap("create", path, err)
	}
	if err := f.Close(); err != nil {
		return wrap("create", path, err)
	}
	return nil
}

// CreateFolder creates a folder and its missing parents.
func (s *Service) CreateFolder(_ context.Context, projectID, path string) error {
	fullPath, err := s.ResolvePath(projectID, path)
	if err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("create folder", "folder path is required")
	}

	if _, err := os.Stat(fullPath); err == nil {
		return vaulterr.Exists("create folder", vpath.Normalize(path), true, fs.ErrExist)
	}
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return wrap("create folder", path, err)
	}
	return nil
}

// Copy duplicates a file or folder into targetFolder. The copy keeps its
// name when that is free; otherwise a localized copy suffix is added.
func (s *Service) Copy(_ context.Context, projectID, source, targetFolder string) (string, error) {
	sourceFull, targetDir, err := s.transferPaths("copy", projectID, source, targetFolder)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(sourceFull)
	if err != nil {
		return "", wrap("copy", source, err)
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return "", wrap("copy", targetFolder, err)
	}
	taken := func(name string) bool {
		_, err := os.Lstat(filepath.Join(targetDir, name))
		return err == nil
	}

	stem, ext := vpath.Base(source), ""
	if !info.IsDir() {
		stem, ext = vpath.Stem(source), rawExt(vpath.Base(source))
	}
	name, err := naming.Unique(stem, s.locale.CopySuffix(), ext, len(entries), taken)
	if err != nil {
		return "", vaulterr.Exists("copy", vpath.Normalize(source), info.IsDir(), err)
	}

	target := filepath.Join(targetDir, name)
	if info.IsDir() {
		if err := copyDir(sourceFull, target); err != nil {
			return "", wrap("copy", source, err)
		}
	} else if err := copyFile(sourceFull, target); err != nil {
		return "", wrap("copy", source, err)
	}

	return vpath.Join(targetFolder, name), nil
}

// Move relocates a file or folder into targetFolder under the same name.
func (s *Service) Move(_ context.Context, projectID, source, targetFolder string) (string, error) {
	if !vpath.IsRoot(source) && vpath.Within(targetFolder, source) {
		return "", vaulterr.Invalid("move", "cannot move %s into itself", vpath.Normalize(source))
	}
	sourceFull, targetDir, err := s.transferPaths("move", projectID, source, targetFolder)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(sourceFull)
	if err != nil {
		return "", wrap("move", source, err)
	}

	newPath := vpath.Join(targetFolder, vpath.Base(source))

	target := filepath.Join(targetDir, filepath.Base(sourceFull))
	if target == sourceFull {
		return newPath, nil
	}
	if _, err := os.Lstat(target); err == nil {
		return "", vaulterr.Exists("move", newPath, info.IsDir(), fs.ErrExist)
	}

	if err := os.Rename(sourceFull, target); err != nil {
		return "", wrap("move", source, err)
	}
	return newPath, nil
}

// transferPaths validates the source and target of a copy or move and makes
// sure the target folder exists.
func (s *Service) transferPaths(op, projectID, source, targetFolder string) (string, string, error) {
	if vpath.IsRoot(source) {
		return "", "", vaulterr.Invalid(op, "source path is required")
	}
	sourceFull, err := s.ResolvePath(projectID, source)
	if err != nil {
		return "", "", err
	}
	targetDir, err := s.ResolvePath(projectID, targetFolder)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", "", wrap(op, targetFolder, err)
	}
	return sourceFull, targetDir, nil
}

// Rename moves oldPath to newPath, creating newPath's parent if needed.
func (s *Service) Rename(_ context.Context, projectID, oldPath, newPath string) error {
	if vpath.IsRoot(oldPath) || vpath.IsRoot(newPath) {
		return vaulterr.Invalid("rename", "both paths are required")
	}
	oldFull, err := s.ResolvePath(projectID, oldPath)
	if err != nil {
		return err
	}
	newFull, err := s.ResolvePath(projectID, newPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(oldFull)
	if err != nil {
		return wrap("rename", oldPath, err)
	}
	if oldFull == newFull {
		return nil
	}
	if info.IsDir() && vpath.Within(newPath, oldPath) {
		return vaulterr.Invalid("rename", "cannot move %s into itself", vpath.Normalize(oldPath))
	}

	op := "rename"
	if info.IsDir() {
		op = "rename folder"
	}
	// A case-only rename resolves to the same file on case-insensitive
	// filesystems and must not count as a collision.
	if existing, err := os.Stat(newFull); err == nil && !os.SameFile(info, existing) {
		return vaulterr.Exists(op, vpath.Normalize(newPath), info.IsDir(), fs.ErrExist)
	}

	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return wrap(op, newPath, err)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return wrap(op, oldPath, err)
	}
	return nil
}

// Delete removes a file or a folder with everything below it.
func (s *Service) Delete(_ context.Context, projectID, path string) error {
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("delete", "refusing to delete the vault root")
	}
	fullPath, err := s.ResolvePath(projectID, path)
	if err != nil {
		return err
	}

	info, err := os.Lstat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return wrap("delete", path, err)
	}

	if info.IsDir() {
		err = os.RemoveAll(fullPath)
	} else {
		err = os.Remove(fullPath)
	}
	if err != nil {
		return wrap("delete", path, err)
	}
	return nil
}

// ImportExternalFile copies a file from outside the vault into targetFolder.
func (s *Service) ImportExternalFile(_ context.Context, projectID, source, targetFolder string) (types.FileInfo, error) {
	info, err := os.Stat(source)
	if err != nil {
		return types.FileInfo{}, wrap("import", source, err)
	}
	if info.IsDir() {
		return types.FileInfo{}, vaulterr.Invalid("import", "cannot import a directory: %s", source)
	}

	targetDir, err := s.ResolvePath(projectID, targetFolder)
	if err != nil {
		return types.FileInfo{}, err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return types.FileInfo{}, wrap("import", targetFolder, err)
	}

	filename := filepath.Base(source)
	newPath := vpath.Join(targetFolder, filename)
	target := filepath.Join(targetDir, filename)
	if _, err := os.Lstat(target); err == nil {
		return types.FileInfo{}, vaulterr.E(vaulterr.AlreadyExists, "import", newPath, fs.ErrExist)
	}

	if err := copyFile(source, target); err != nil {
		return types.FileInfo{}, wrap("import", newPath, err)
	}

	ext := vpath.Ext(filename)
	return types.FileInfo{
		Filename: vpath.Stem(filename),
		FileType: string(filetype.Classify(ext)),
		Ext:      ext,
		Size:     info.Size(),
		Path:     newPath,
	}, nil
}

// SaveAttachment writes data to the attachment folder and returns the path
// markdown documents use to reference it.
func (s *Service) SaveAttachment(_ context.Context, projectID, filename string, data []byte) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", vaulterr.Invalid("save attachment", "invalid attachment name %q", filename)
	}

	vaultDir, err := s.VaultDir(projectID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(vaultDir, AttachmentsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrap("save attachment", AttachmentsDir, err)
	}

	rel := AttachmentsDir + "/" + name
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", wrap("save attachment", rel, err)
	}
	return rel, nil
}

// rawExt returns the extension of name as written, without the dot.
func rawExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

// wrap classifies an os error at the backend boundary.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var verr *vaulterr.Error
	if errors.As(err, &verr) {
		return err
	}

	kind := vaulterr.BackendFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = vaulterr.NotFound
	case errors.Is(err, fs.ErrExist):
		kind = vaulterr.AlreadyExists
	}
	if !filepath.IsAbs(path) {
		path = vpath.Normalize(path)
	}
	return vaulterr.E(kind, op, path, err)
}
