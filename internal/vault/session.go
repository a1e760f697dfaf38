// Package vault keeps an in-memory projection of a project's document vault
// consistent with its backend.
//
// A Session owns the flat document index, the scan tree, the empty folder set
// and the active document of one project. Every mutation runs the same
// pipeline: validate, apply the effect through the backend, rescan, then
// reconcile the active document against the fresh index. The collections are
// only ever replaced by a rescan.
package vault

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/frontmatter"
	"github.com/taigrr/docvault/internal/logging"
	"github.com/taigrr/docvault/internal/metrics"
	"github.com/taigrr/docvault/internal/projector"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

// Option configures a Session.
type Option func(*Session)

// WithLocale sets the language of LastError messages and copy names.
func WithLocale(locale vaulterr.Locale) Option {
	return func(s *Session) { s.locale = locale }
}

// WithLogger sets the logger sessions derive theirs from.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func withHooks(onOpen func(types.DocumentRecord), onIndex func(string, []types.DocumentRecord)) Option {
	return func(s *Session) {
		s.onOpen = onOpen
		s.onIndex = onIndex
	}
}

// Session is the synchronized view of one project's vault. Top-level
// operations are serialized; readers get copies.
type Session struct {
	id        string
	projectID string
	backend   backend.Backend
	locale    vaulterr.Locale
	logger    *zap.Logger

	onOpen  func(types.DocumentRecord)
	onIndex func(string, []types.DocumentRecord)

	// opMu serializes top-level operations.
	opMu sync.Mutex

	// mu guards everything below.
	mu           sync.RWMutex
	documents    []types.DocumentRecord
	fileTree     []types.ScanNode
	emptyFolders []string
	activePath   string
	activeType   filetype.Type
	content      string
	savedContent string
	binary       []byte
	openedSize   int64
	dirty        bool
	loading      bool
	saving       bool
	state        State
	lastError    string
	disposed     bool
}

// NewSession creates an empty session for projectID. Call LoadDocuments to
// populate it.
func NewSession(projectID string, b backend.Backend, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		projectID: strings.TrimSpace(projectID),
		backend:   b,
		locale:    vaulterr.English,
		logger:    logging.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id), zap.String("project", s.projectID))
	return s
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// ProjectID returns the project the session belongs to.
func (s *Session) ProjectID() string { return s.projectID }

// Locale returns the session's message language.
func (s *Session) Locale() vaulterr.Locale { return s.locale }

// LastError returns the localized message of the last failed operation, or
// the empty string when the last operation succeeded.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// State returns the phase of the active document.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:           s.id,
		ProjectID:    s.projectID,
		State:        s.state.String(),
		Documents:    slices.Clone(s.documents),
		FileTree:     slices.Clone(s.fileTree),
		EmptyFolders: slices.Clone(s.emptyFolders),
		ActivePath:   s.activePath,
		Dirty:        s.dirty,
		Loading:      s.loading,
		Saving:       s.saving,
		LastError:    s.lastError,
	}
}

// Documents returns a copy of the flat index.
func (s *Session) Documents() []types.DocumentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.documents)
}

// Document looks up a record of the flat index by path.
func (s *Session) Document(path string) (types.DocumentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.documents, vpath.Normalize(path)); i >= 0 {
		return s.documents[i], true
	}
	return types.DocumentRecord{}, false
}

// Groups returns the documents grouped by folder.
func (s *Session) Groups() []types.FolderGroup {
	return projector.GroupByFolder(s.Documents())
}

// Folders returns every non-root folder of the vault.
func (s *Session) Folders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return projector.Folders(s.documents, s.emptyFolders)
}

func (s *Session) hasFolder(path string) bool {
	return slices.Contains(s.Folders(), vpath.Normalize(path))
}

// Active returns the open document.
func (s *Session) Active() (ActiveDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activePath == "" {
		return ActiveDocument{}, false
	}
	i := indexOf(s.documents, s.activePath)
	if i < 0 {
		return ActiveDocument{}, false
	}
	doc := ActiveDocument{
		Record:  s.documents[i],
		Content: s.content,
		Binary:  slices.Clone(s.binary),
		Dirty:   s.dirty,
	}
	if s.activeType == filetype.Markdown {
		doc.Frontmatter = frontmatter.Parse(s.content).Frontmatter
	}
	return doc, true
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
	if v {
		s.lastError = ""
	}
}

// fail records err as the session's last error and returns it.
func (s *Session) fail(op, path string, err error) error {
	msg := s.locale.Message(err)
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()

	kind := vaulterr.KindOf(err)
	if kind != vaulterr.InvalidArgument && kind != vaulterr.StateConflict {
		metrics.RecordBackendError(kind.String())
	}
	s.logger.Warn("vault operation failed",
		zap.String("op", op),
		zap.String("path", path),
		zap.String("kind", kind.String()),
		zap.Error(err),
	)
	return err
}

func (s *Session) checkUsable(op string) error {
	s.mu.RLock()
	disposed := s.disposed
	s.mu.RUnlock()
	if disposed {
		return vaulterr.E(vaulterr.StateConflict, op, "", errSessionDisposed)
	}
	if s.projectID == "" {
		return vaulterr.Invalid(op, "project id is required")
	}
	return nil
}

// LoadDocuments rescans the vault and rebuilds the index. Without
// PreserveSelection the default document is opened.
func (s *Session) LoadDocuments(ctx context.Context, opts LoadOptions) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.projectID == "" {
		s.reset()
		return nil
	}
	if err := s.checkUsable("load"); err != nil {
		return s.fail("load", "", err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.backend.EnsureInitialized(ctx, s.projectID); err != nil {
		return s.fail("load", "", err)
	}
	if err := s.rescan(ctx); err != nil {
		return s.fail("load", "", err)
	}
	if err := s.apply(ctx, plan{preserve: opts.PreserveSelection}); err != nil {
		return s.fail("load", "", err)
	}
	return nil
}

// Refresh rescans the vault keeping the active document.
func (s *Session) Refresh(ctx context.Context) error {
	return s.LoadDocuments(ctx, LoadOptions{PreserveSelection: true})
}

// rescan replaces the index with a fresh projection of the backend tree.
func (s *Session) rescan(ctx context.Context) error {
	start := timeNow()
	nodes, err := s.backend.Scan(ctx, s.projectID)
	metrics.RecordRescan(timeSince(start), err == nil)
	if err != nil {
		return err
	}

	p := projector.Project(nodes, vpath.Root, s.projectID)

	s.mu.Lock()
	s.documents = p.Documents
	s.fileTree = nodes
	s.emptyFolders = p.EmptyFolders
	s.mu.Unlock()

	metrics.SetIndexSize(s.projectID, len(p.Documents), len(p.EmptyFolders))
	s.logger.Debug("vault rescanned",
		zap.Int("documents", len(p.Documents)),
		zap.Int("empty_folders", len(p.EmptyFolders)),
		zap.Duration("duration", timeSince(start)),
	)
	if s.onIndex != nil {
		s.onIndex(s.projectID, slices.Clone(p.Documents))
	}
	return nil
}

// apply reconciles the active document with the current index.
func (s *Session) apply(ctx context.Context, p plan) error {
	s.mu.RLock()
	previous := s.activePath
	docs := s.documents
	s.mu.RUnlock()

	sel := reconcile(docs, previous, p)
	if sel.Path == "" {
		s.closeActive()
		return nil
	}
	if !sel.Kept {
		return s.open(ctx, sel.Path)
	}

	// Relocated by a rename or move.
	s.mu.Lock()
	s.activePath = sel.Path
	rec := docs[indexOf(docs, sel.Path)]
	stale := !s.dirty && rec.FileSize != s.openedSize
	s.mu.Unlock()

	if stale {
		s.logger.Debug("active document changed on disk, reloading", zap.String("path", sel.Path))
		return s.open(ctx, sel.Path)
	}
	return nil
}

func resolveType(rec types.DocumentRecord) filetype.Type {
	if t := filetype.Parse(rec.Type); t != filetype.Unknown {
		return t
	}
	return filetype.Classify(rec.FileExt)
}

// open activates the indexed document at path and loads its content.
func (s *Session) open(ctx context.Context, path string) error {
	path = vpath.Normalize(path)

	s.mu.Lock()
	i := indexOf(s.documents, path)
	if i < 0 {
		s.mu.Unlock()
		return vaulterr.E(vaulterr.NotFound, "open", path, nil)
	}
	rec := s.documents[i]
	previous := s.state
	s.state = Opening
	s.mu.Unlock()

	var (
		text string
		data []byte
		err  error
	)
	docType := resolveType(rec)
	switch {
	case docType.Editable():
		text, err = s.backend.ReadText(ctx, s.projectID, path)
	case docType.Binary():
		data, err = s.backend.ReadBinary(ctx, s.projectID, path)
	}

	s.mu.Lock()
	if err != nil {
		s.state = previous
		s.mu.Unlock()
		return err
	}
	s.activePath = path
	s.activeType = docType
	s.content = text
	s.savedContent = text
	s.binary = data
	s.openedSize = rec.FileSize
	s.dirty = false
	s.state = Open
	s.mu.Unlock()

	s.logger.Debug("document opened", zap.String("path", path), zap.String("type", string(docType)))
	if s.onOpen != nil {
		s.onOpen(rec)
	}
	return nil
}

// OpenByPath makes the indexed document at path active. Unsaved edits of the
// previously active document are discarded.
func (s *Session) OpenByPath(ctx context.Context, path string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.checkUsable("open"); err != nil {
		return s.fail("open", path, err)
	}
	if strings.TrimSpace(path) == "" {
		return s.fail("open", path, vaulterr.Invalid("open", "path is required"))
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.open(ctx, path); err != nil {
		return s.fail("open", path, err)
	}
	return nil
}

// UpdateContent replaces the text of the open markdown document. Nothing is
// written until Save.
func (s *Session) UpdateContent(text string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.updateContent("update", text)
}

func (s *Session) updateContent(op, text string) error {
	if err := s.checkUsable(op); err != nil {
		return s.fail(op, "", err)
	}
	s.mu.Lock()
	if s.activePath == "" || !s.activeType.Editable() {
		s.mu.Unlock()
		return s.fail(op, "", vaulterr.E(vaulterr.StateConflict, op, "", errNoMarkdown))
	}
	s.content = text
	s.dirty = text != s.savedContent
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// UpdateFrontmatter merges updates into the frontmatter of the open markdown
// document. A nil value removes a key.
func (s *Session) UpdateFrontmatter(updates map[string]any) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	content := s.content
	s.mu.RUnlock()

	merged, err := frontmatter.Merge(content, updates)
	if err != nil {
		return s.fail("update frontmatter", "", err)
	}
	return s.updateContent("update frontmatter", merged)
}

// Save writes the open markdown document when it has unsaved edits. It is a
// no-op otherwise.
func (s *Session) Save(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.checkUsable("save"); err != nil {
		return s.fail("save", "", err)
	}

	s.mu.Lock()
	if s.activePath == "" || !s.dirty || !s.activeType.Editable() {
		s.mu.Unlock()
		return nil
	}
	path, content := s.activePath, s.content
	s.state = Saving
	s.saving = true
	s.lastError = ""
	s.mu.Unlock()

	err := s.backend.WriteText(ctx, s.projectID, path, content)
	metrics.RecordSave(len(content), err == nil)

	s.mu.Lock()
	s.saving = false
	s.state = Open
	if err != nil {
		s.mu.Unlock()
		return s.fail("save", path, err)
	}
	size := int64(len(content))
	s.savedContent = content
	s.dirty = false
	s.openedSize = size
	docs := slices.Clone(s.documents)
	if i := indexOf(docs, path); i >= 0 {
		docs[i].FileSize = size
	}
	s.documents = docs
	s.mu.Unlock()

	s.logger.Info("document saved", zap.String("path", path), zap.Int64("size", size))
	return nil
}

// Close deactivates the open document, discarding unsaved edits.
func (s *Session) Close() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.closeActive()
}

func (s *Session) closeActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePath = ""
	s.activeType = ""
	s.content = ""
	s.savedContent = ""
	s.binary = nil
	s.openedSize = 0
	s.dirty = false
	s.state = Closed
}

func (s *Session) reset() {
	s.closeActive()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	s.fileTree = nil
	s.emptyFolders = nil
	s.lastError = ""
}

// Dispose clears the session. Later operations fail with StateConflict.
func (s *Session) Dispose() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.reset()
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
	s.logger.Debug("session disposed")
}
