package vault

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/metrics"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

var (
	errSessionDisposed = errors.New("session is closed")
	errNoMarkdown      = errors.New("no markdown document is open")
	errNoAttachments   = errors.New("backend does not store attachments")
)

var timeNow = time.Now

func timeSince(t time.Time) time.Duration { return timeNow().Sub(t) }

// mutation is one pass of the pipeline: validate, effect, rescan, reconcile.
type mutation struct {
	op   string
	path string
	// validate runs before any I/O. A failure never triggers a rescan.
	validate func() error
	// noop short-circuits the pipeline with a result when the mutation
	// would not change anything.
	noop func() (string, bool)
	// effect applies the change through the backend and returns the
	// resulting path.
	effect func(ctx context.Context) (string, error)
	// plan tells the rescan how to reconcile the active document.
	plan func(result string) plan
}

func (s *Session) mutate(ctx context.Context, m mutation) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.checkUsable(m.op); err != nil {
		return "", s.fail(m.op, m.path, err)
	}
	if m.validate != nil {
		if err := m.validate(); err != nil {
			return "", s.fail(m.op, m.path, err)
		}
	}
	if m.noop != nil {
		if result, ok := m.noop(); ok {
			s.mu.Lock()
			s.lastError = ""
			s.mu.Unlock()
			return result, nil
		}
	}

	start := timeNow()
	s.setLoading(true)
	defer s.setLoading(false)

	result, err := m.effect(ctx)
	if err == nil {
		err = s.rescan(ctx)
	}
	if err == nil {
		p := plan{preserve: true}
		if m.plan != nil {
			p = m.plan(result)
		}
		err = s.apply(ctx, p)
	}
	metrics.RecordMutation(m.op, timeSince(start), err == nil)
	if err != nil {
		return "", s.fail(m.op, m.path, err)
	}

	s.logger.Info("vault mutation",
		zap.String("op", m.op),
		zap.String("path", m.path),
		zap.String("result", result),
		zap.Duration("duration", timeSince(start)),
	)
	return result, nil
}

func preserve(string) plan { return plan{preserve: true} }

func follow(from string) func(string) plan {
	return func(to string) plan {
		return plan{preserve: true, follow: followRename(from, to)}
	}
}

func closeIfGone(string) plan { return plan{preserve: true, closeMissing: true} }

// validName rejects empty names and names that would address another folder.
func validName(op, what, name string) error {
	switch {
	case name == "":
		return vaulterr.Invalid(op, "%s is required", what)
	case strings.ContainsAny(name, `/\`):
		return vaulterr.Invalid(op, "%s must not contain path separators", what)
	case name == "." || name == "..":
		return vaulterr.Invalid(op, "%s %q is reserved", what, name)
	}
	return nil
}

func (s *Session) requireDocument(op, path string) (types.DocumentRecord, error) {
	if vpath.IsRoot(path) {
		return types.DocumentRecord{}, vaulterr.Invalid(op, "document path is required")
	}
	rec, ok := s.Document(path)
	if !ok {
		return types.DocumentRecord{}, vaulterr.E(vaulterr.NotFound, op, vpath.Normalize(path), nil)
	}
	return rec, nil
}

func (s *Session) requireFolder(op, path string) error {
	if vpath.IsRoot(path) {
		return vaulterr.Invalid(op, "folder path is required")
	}
	if !s.hasFolder(path) {
		return vaulterr.E(vaulterr.NotFound, op, vpath.Normalize(path), nil)
	}
	return nil
}

// CreateDocument creates a markdown document titled title in folder and
// opens it. A trailing ".md" on the title is dropped.
func (s *Session) CreateDocument(ctx context.Context, title, folder string) (string, error) {
	title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), ".md"))
	path := vpath.Join(folder, title+".md")
	return s.mutate(ctx, mutation{
		op:   "create document",
		path: path,
		validate: func() error {
			return validName("create document", "title", title)
		},
		effect: func(ctx context.Context) (string, error) {
			if err := s.backend.EnsureInitialized(ctx, s.projectID); err != nil {
				return "", err
			}
			return path, s.backend.CreateText(ctx, s.projectID, path, "# "+title+"\n\n")
		},
		plan: func(result string) plan {
			return plan{preserve: true, open: result}
		},
	})
}

// CreateFolder creates the folder at path.
func (s *Session) CreateFolder(ctx context.Context, path string) (string, error) {
	path = vpath.Normalize(path)
	return s.mutate(ctx, mutation{
		op:   "create folder",
		path: path,
		validate: func() error {
			if vpath.IsRoot(path) {
				return vaulterr.Invalid("create folder", "folder path is required")
			}
			return validName("create folder", "folder name", vpath.Base(path))
		},
		effect: func(ctx context.Context) (string, error) {
			if err := s.backend.EnsureInitialized(ctx, s.projectID); err != nil {
				return "", err
			}
			return path, s.backend.CreateFolder(ctx, s.projectID, path)
		},
		plan: preserve,
	})
}

// RenameDocument gives the document at path a new title, keeping its
// extension, and returns the new path.
func (s *Session) RenameDocument(ctx context.Context, path, newTitle string) (string, error) {
	const op = "rename document"
	path = vpath.Normalize(path)
	newTitle = strings.TrimSpace(newTitle)
	var newPath string
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			if err := validName(op, "title", newTitle); err != nil {
				return err
			}
			rec, err := s.requireDocument(op, path)
			if err != nil {
				return err
			}
			name := newTitle
			if rec.FileExt != "" && !strings.EqualFold(vpath.Ext(name), rec.FileExt) {
				name += "." + rec.FileExt
			}
			newPath = vpath.ReplaceBase(path, name)
			return nil
		},
		noop: func() (string, bool) { return path, newPath == path },
		effect: func(ctx context.Context) (string, error) {
			return newPath, s.backend.Rename(ctx, s.projectID, path, newPath)
		},
		plan: follow(path),
	})
}

// RenameFolder replaces the last segment of the folder at path with newName.
// Everything below the folder moves with it.
func (s *Session) RenameFolder(ctx context.Context, path, newName string) (string, error) {
	const op = "rename folder"
	path = vpath.Normalize(path)
	newName = strings.TrimSpace(newName)
	newPath := vpath.ReplaceBase(path, newName)
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			if err := validName(op, "folder name", newName); err != nil {
				return err
			}
			return s.requireFolder(op, path)
		},
		noop: func() (string, bool) { return path, newPath == path },
		effect: func(ctx context.Context) (string, error) {
			return newPath, s.backend.Rename(ctx, s.projectID, path, newPath)
		},
		plan: follow(path),
	})
}

// MoveDocument moves the document at path into targetFolder. Moving a
// document into the folder it is already in does nothing.
func (s *Session) MoveDocument(ctx context.Context, path, targetFolder string) (string, error) {
	const op = "move document"
	path = vpath.Normalize(path)
	targetFolder = vpath.Normalize(targetFolder)
	var current string
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			rec, err := s.requireDocument(op, path)
			current = rec.Folder
			return err
		},
		noop: func() (string, bool) { return path, current == targetFolder },
		effect: func(ctx context.Context) (string, error) {
			return s.backend.Move(ctx, s.projectID, path, targetFolder)
		},
		plan: follow(path),
	})
}

// MoveFolder moves the folder at path, with its subtree, into targetFolder.
func (s *Session) MoveFolder(ctx context.Context, path, targetFolder string) (string, error) {
	const op = "move folder"
	path = vpath.Normalize(path)
	targetFolder = vpath.Normalize(targetFolder)
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			if err := s.requireFolder(op, path); err != nil {
				return err
			}
			if vpath.Within(targetFolder, path) {
				return vaulterr.Invalid(op, "cannot move %s into itself", path)
			}
			return nil
		},
		noop: func() (string, bool) { return path, vpath.Parent(path) == targetFolder },
		effect: func(ctx context.Context) (string, error) {
			return s.backend.Move(ctx, s.projectID, path, targetFolder)
		},
		plan: follow(path),
	})
}

// CopyDocument duplicates the document at path into targetFolder under a
// free name and returns the new path.
func (s *Session) CopyDocument(ctx context.Context, path, targetFolder string) (string, error) {
	const op = "copy document"
	path = vpath.Normalize(path)
	targetFolder = vpath.Normalize(targetFolder)
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			_, err := s.requireDocument(op, path)
			return err
		},
		effect: func(ctx context.Context) (string, error) {
			return s.backend.Copy(ctx, s.projectID, path, targetFolder)
		},
		plan: preserve,
	})
}

// CopyFolder duplicates the folder at path, with its subtree, into
// targetFolder.
func (s *Session) CopyFolder(ctx context.Context, path, targetFolder string) (string, error) {
	const op = "copy folder"
	path = vpath.Normalize(path)
	targetFolder = vpath.Normalize(targetFolder)
	return s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			if err := s.requireFolder(op, path); err != nil {
				return err
			}
			if vpath.Within(targetFolder, path) {
				return vaulterr.Invalid(op, "cannot copy %s into itself", path)
			}
			return nil
		},
		effect: func(ctx context.Context) (string, error) {
			return s.backend.Copy(ctx, s.projectID, path, targetFolder)
		},
		plan: preserve,
	})
}

// DeleteDocument removes the document at path. The session closes if it was
// the active document.
func (s *Session) DeleteDocument(ctx context.Context, path string) error {
	const op = "delete document"
	path = vpath.Normalize(path)
	_, err := s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			_, err := s.requireDocument(op, path)
			return err
		},
		effect: func(ctx context.Context) (string, error) {
			return path, s.backend.Delete(ctx, s.projectID, path)
		},
		plan: closeIfGone,
	})
	return err
}

// DeleteFolder removes the folder at path and everything below it. The
// session closes if the active document was inside.
func (s *Session) DeleteFolder(ctx context.Context, path string) error {
	const op = "delete folder"
	path = vpath.Normalize(path)
	_, err := s.mutate(ctx, mutation{
		op:   op,
		path: path,
		validate: func() error {
			return s.requireFolder(op, path)
		},
		effect: func(ctx context.Context) (string, error) {
			return path, s.backend.Delete(ctx, s.projectID, path)
		},
		plan: closeIfGone,
	})
	return err
}

// ImportFile copies the host file at the absolute path source into
// targetFolder. Only markdown, PDF and image files are accepted.
func (s *Session) ImportFile(ctx context.Context, source, targetFolder string) (types.FileInfo, error) {
	const op = "import"
	targetFolder = vpath.Normalize(targetFolder)
	var info types.FileInfo
	_, err := s.mutate(ctx, mutation{
		op:   op,
		path: source,
		validate: func() error {
			switch {
			case strings.TrimSpace(source) == "":
				return vaulterr.Invalid(op, "source path is required")
			case !filepath.IsAbs(source):
				return vaulterr.Invalid(op, "source path %q must be absolute", source)
			case !filetype.Importable(source):
				return vaulterr.Invalid(op, "unsupported file type: %s", filepath.Base(source))
			}
			return nil
		},
		effect: func(ctx context.Context) (string, error) {
			if err := s.backend.EnsureInitialized(ctx, s.projectID); err != nil {
				return "", err
			}
			var err error
			info, err = s.backend.ImportExternalFile(ctx, s.projectID, source, targetFolder)
			return info.Path, err
		},
		plan: preserve,
	})
	if err != nil {
		return types.FileInfo{}, err
	}
	return info, nil
}

// ImportFiles imports each source in turn and reports every outcome. A
// failed file does not stop the batch.
func (s *Session) ImportFiles(ctx context.Context, sources []string, targetFolder string) []types.ImportResult {
	results := make([]types.ImportResult, 0, len(sources))
	for _, source := range sources {
		result := types.ImportResult{Source: source, Name: filepath.Base(source)}
		info, err := s.ImportFile(ctx, source, targetFolder)
		if err != nil {
			result.Error = s.locale.Message(err)
		} else {
			result.Success = true
			result.Path = info.Path
		}
		results = append(results, result)
	}
	return results
}

// SaveAttachment stores data under the vault's attachment folder and returns
// the path to reference it by from markdown.
func (s *Session) SaveAttachment(ctx context.Context, filename string, data []byte) (string, error) {
	const op = "save attachment"
	store, ok := s.backend.(backend.AttachmentStore)
	filename = strings.TrimSpace(filename)
	return s.mutate(ctx, mutation{
		op:   op,
		path: filename,
		validate: func() error {
			if !ok {
				return vaulterr.E(vaulterr.StateConflict, op, "", errNoAttachments)
			}
			return validName(op, "filename", filename)
		},
		effect: func(ctx context.Context) (string, error) {
			if err := s.backend.EnsureInitialized(ctx, s.projectID); err != nil {
				return "", err
			}
			return store.SaveAttachment(ctx, s.projectID, filename, data)
		},
		plan: preserve,
	})
}

// AbsolutePath resolves a virtual path to its location on the host.
func (s *Session) AbsolutePath(path string) (string, error) {
	store, ok := s.backend.(backend.AttachmentStore)
	if !ok {
		return "", vaulterr.E(vaulterr.StateConflict, "resolve", path, errNoAttachments)
	}
	return store.AbsolutePath(s.projectID, path)
}
