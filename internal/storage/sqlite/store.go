package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/naming"
	"github.com/taigrr/docvault/internal/storage/sqlite/migrations"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

// DefaultFilename is the database file created inside the data directory.
const DefaultFilename = "docvault.db"

var _ backend.Backend = (*Store)(nil)

// Store is the legacy vault backend. Documents are rows keyed by
// (project, folder, title, extension); folders without documents are kept in
// their own table.
type Store struct {
	db     *sql.DB
	path   string
	locale vaulterr.Locale
}

// Open opens or creates the database at dbPath and applies pending
// migrations.
func Open(dbPath string, locale vaulterr.Locale) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		locale: locale,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Records ====================

type record struct {
	id      int64
	title   string
	folder  string
	docType string
	ext     string
	size    int64
}

func (r record) path() string {
	name := r.title
	if r.ext != "" {
		name += "." + r.ext
	}
	return vpath.Join(r.folder, name)
}

func (r record) node() types.ScanNode {
	size := r.size
	return types.ScanNode{
		Name:     r.title,
		Path:     r.path(),
		FileType: r.docType,
		Ext:      strings.ToLower(r.ext),
		Size:     &size,
	}
}

// splitPath breaks a virtual document path into the columns identifying it.
func splitPath(p string) (folder, title, ext string) {
	p = vpath.Normalize(p)
	base := vpath.Base(p)
	folder = vpath.Parent(p)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return folder, base, ""
	}
	return folder, base[:idx], base[idx+1:]
}

const recordColumns = "id, title, folder, type, file_ext, file_size"

func scanRecord(row interface{ Scan(...any) error }) (record, error) {
	var r record
	err := row.Scan(&r.id, &r.title, &r.folder, &r.docType, &r.ext, &r.size)
	return r, err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) lookup(ctx context.Context, q querier, projectID, p string) (record, error) {
	folder, title, ext := splitPath(p)
	row := q.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM documents WHERE project_id = ? AND folder = ? AND title = ? AND file_ext = ?",
		projectID, folder, title, ext)
	return scanRecord(row)
}

// within selects the documents stored in folder or below it.
func (s *Store) within(ctx context.Context, q querier, projectID, folder string) ([]record, error) {
	folder = vpath.Normalize(folder)
	prefix := subtreePrefix(folder)
	rows, err := q.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM documents WHERE project_id = ? AND (folder = ? OR substr(folder, 1, ?) = ?) ORDER BY folder, title",
		projectID, folder, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) foldersWithin(ctx context.Context, q querier, projectID, folder string) ([]string, error) {
	folder = vpath.Normalize(folder)
	prefix := subtreePrefix(folder)
	rows, err := q.QueryContext(ctx,
		"SELECT path FROM folders WHERE project_id = ? AND (path = ? OR substr(path, 1, ?) = ?) ORDER BY path",
		projectID, folder, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// folderExists reports whether folder is present either as a stored empty
// folder or as the ancestor of a document.
func (s *Store) folderExists(ctx context.Context, q querier, projectID, folder string) (bool, error) {
	if vpath.IsRoot(folder) {
		return true, nil
	}
	docs, err := s.within(ctx, q, projectID, folder)
	if err != nil || len(docs) > 0 {
		return len(docs) > 0, err
	}
	folders, err := s.foldersWithin(ctx, q, projectID, folder)
	return len(folders) > 0, err
}

// subtreePrefix is the string every path below folder starts with.
func subtreePrefix(folder string) string {
	if vpath.IsRoot(folder) {
		return vpath.Root
	}
	return folder + "/"
}

func touchProject(ctx context.Context, q querier, projectID string) error {
	_, err := q.ExecContext(ctx, "INSERT OR IGNORE INTO projects (id) VALUES (?)", projectID)
	return err
}

func validProject(op, projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return vaulterr.Invalid(op, "project id is required")
	}
	return nil
}

// inTx runs fn inside a transaction that also registers the project.
func (s *Store) inTx(ctx context.Context, projectID string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchProject(ctx, tx, projectID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Backend ====================

// EnsureInitialized registers the project.
func (s *Store) EnsureInitialized(ctx context.Context, projectID string) error {
	if err := validProject("init", projectID); err != nil {
		return err
	}
	if err := touchProject(ctx, s.db, projectID); err != nil {
		return wrap("init", vpath.Root, err)
	}
	return nil
}

// Scan synthesizes a directory tree from the project's rows.
func (s *Store) Scan(ctx context.Context, projectID string) ([]types.ScanNode, error) {
	if err := validProject("scan", projectID); err != nil {
		return nil, err
	}

	docs, err := s.within(ctx, s.db, projectID, vpath.Root)
	if err != nil {
		return nil, wrap("scan", vpath.Root, err)
	}
	folders, err := s.foldersWithin(ctx, s.db, projectID, vpath.Root)
	if err != nil {
		return nil, wrap("scan", vpath.Root, err)
	}

	dirs := map[string]*types.ScanNode{vpath.Root: {Path: vpath.Root, IsDir: true}}
	var ensure func(string) *types.ScanNode
	ensure = func(p string) *types.ScanNode {
		p = vpath.Normalize(p)
		if n, ok := dirs[p]; ok {
			return n
		}
		ensure(vpath.Parent(p))
		n := &types.ScanNode{Name: vpath.Base(p), Path: p, IsDir: true}
		dirs[p] = n
		return n
	}

	files := make(map[string][]types.ScanNode)
	for _, f := range folders {
		ensure(f)
	}
	for _, d := range docs {
		ensure(d.folder)
		folder := vpath.Normalize(d.folder)
		files[folder] = append(files[folder], d.node())
	}

	children := make(map[string][]string)
	for p := range dirs {
		if p != vpath.Root {
			parent := vpath.Parent(p)
			children[parent] = append(children[parent], p)
		}
	}

	var build func(string) []types.ScanNode
	build = func(p string) []types.ScanNode {
		var nodes []types.ScanNode
		for _, c := range children[p] {
			n := *dirs[c]
			n.Children = build(c)
			nodes = append(nodes, n)
		}
		nodes = append(nodes, files[p]...)
		types.SortScanNodes(nodes)
		return nodes
	}
	return build(vpath.Root), nil
}

// ReadText returns a document's content as text.
func (s *Store) ReadText(ctx context.Context, projectID, path string) (string, error) {
	data, err := s.content(ctx, "read", projectID, path)
	return string(data), err
}

// ReadBinary returns a document's content as bytes.
func (s *Store) ReadBinary(ctx context.Context, projectID, path string) ([]byte, error) {
	return s.content(ctx, "read binary", projectID, path)
}

func (s *Store) content(ctx context.Context, op, projectID, path string) ([]byte, error) {
	if err := validProject(op, projectID); err != nil {
		return nil, err
	}
	folder, title, ext := splitPath(path)
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM documents WHERE project_id = ? AND folder = ? AND title = ? AND file_ext = ?",
		projectID, folder, title, ext).Scan(&data)
	if err != nil {
		return nil, wrap(op, path, err)
	}
	return data, nil
}

// WriteText stores content at path, creating the row if needed.
func (s *Store) WriteText(ctx context.Context, projectID, path, content string) error {
	if err := validProject("write", projectID); err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("write", "path is required")
	}
	folder, title, ext := splitPath(path)

	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE documents SET content = ?, file_size = ?, updated_at = CURRENT_TIMESTAMP WHERE project_id = ? AND folder = ? AND title = ? AND file_ext = ?",
			[]byte(content), len(content), projectID, folder, title, ext)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		return insertDocument(ctx, tx, projectID, folder, title, ext, []byte(content))
	})
	return wrap("write", path, err)
}

// CreateText inserts a new document and fails when the path is taken.
func (s *Store) CreateText(ctx context.Context, projectID, path, content string) error {
	if err := validProject("create", projectID); err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("create", "path is required")
	}
	folder, title, ext := splitPath(path)

	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		return insertDocument(ctx, tx, projectID, folder, title, ext, []byte(content))
	})
	return wrap("create", path, err)
}

func insertDocument(ctx context.Context, q querier, projectID, folder, title, ext string, content []byte) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO documents (project_id, title, folder, type, file_ext, file_size, content) VALUES (?, ?, ?, ?, ?, ?, ?)",
		projectID, title, folder, string(filetype.Classify(ext)), ext, len(content), content)
	return err
}

// CreateFolder records an empty folder.
func (s *Store) CreateFolder(ctx context.Context, projectID, path string) error {
	if err := validProject("create folder", projectID); err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("create folder", "folder path is required")
	}
	path = vpath.Normalize(path)

	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		exists, err := s.folderExists(ctx, tx, projectID, path)
		if err != nil {
			return err
		}
		if exists {
			return vaulterr.Exists("create folder", path, true, fs.ErrExist)
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO folders (project_id, path) VALUES (?, ?)", projectID, path)
		return err
	})
	return wrap("create folder", path, err)
}

// Copy duplicates a document, or a folder with its documents, into
// targetFolder. Copied documents always get the copy suffix.
func (s *Store) Copy(ctx context.Context, projectID, source, targetFolder string) (string, error) {
	if err := validProject("copy", projectID); err != nil {
		return "", err
	}
	if vpath.IsRoot(source) {
		return "", vaulterr.Invalid("copy", "source path is required")
	}
	targetFolder = vpath.Normalize(targetFolder)

	var newPath string
	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		rec, err := s.lookup(ctx, tx, projectID, source)
		if err == nil {
			newPath, err = s.copyDocument(ctx, tx, projectID, rec, targetFolder)
			return err
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		newPath, err = s.copyFolder(ctx, tx, projectID, vpath.Normalize(source), targetFolder)
		return err
	})
	if err != nil {
		return "", wrap("copy", source, err)
	}
	return newPath, nil
}

func (s *Store) copyDocument(ctx context.Context, tx *sql.Tx, projectID string, rec record, targetFolder string) (string, error) {
	siblings, err := s.titlesIn(ctx, tx, projectID, targetFolder)
	if err != nil {
		return "", err
	}
	title, err := naming.CopyName(rec.title, s.locale.CopySuffix(), "", len(siblings), func(t string) bool {
		return siblings[t]
	})
	if err != nil {
		return "", vaulterr.Exists("copy", rec.path(), false, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (project_id, title, folder, type, file_ext, file_size, content)
		SELECT project_id, ?, ?, type, file_ext, file_size, content FROM documents WHERE id = ?`,
		title, targetFolder, rec.id)
	if err != nil {
		return "", err
	}
	rec.title, rec.folder = title, targetFolder
	return rec.path(), nil
}

func (s *Store) copyFolder(ctx context.Context, tx *sql.Tx, projectID, source, targetFolder string) (string, error) {
	exists, err := s.folderExists(ctx, tx, projectID, source)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", vaulterr.E(vaulterr.NotFound, "copy", source, sql.ErrNoRows)
	}
	if vpath.Within(targetFolder, source) {
		return "", vaulterr.Invalid("copy", "cannot copy %s into itself", source)
	}

	taken := func(name string) bool {
		ok, err := s.folderExists(ctx, tx, projectID, vpath.Join(targetFolder, name))
		return err != nil || ok
	}
	siblings, err := s.subfolders(ctx, tx, projectID, targetFolder)
	if err != nil {
		return "", err
	}
	name, err := naming.Unique(vpath.Base(source), s.locale.CopySuffix(), "", len(siblings), taken)
	if err != nil {
		return "", vaulterr.Exists("copy folder", source, true, err)
	}
	dest := vpath.Join(targetFolder, name)

	docs, err := s.within(ctx, tx, projectID, source)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (project_id, title, folder, type, file_ext, file_size, content)
			SELECT project_id, title, ?, type, file_ext, file_size, content FROM documents WHERE id = ?`,
			vpath.Rebase(d.folder, source, dest), d.id)
		if err != nil {
			return "", err
		}
	}

	folders, err := s.foldersWithin(ctx, tx, projectID, source)
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO folders (project_id, path) VALUES (?, ?)",
			projectID, vpath.Rebase(f, source, dest)); err != nil {
			return "", err
		}
	}
	if len(docs) == 0 && len(folders) == 0 {
		if _, err := tx.ExecContext(ctx, "INSERT INTO folders (project_id, path) VALUES (?, ?)", projectID, dest); err != nil {
			return "", err
		}
	}
	return dest, nil
}

func (s *Store) titlesIn(ctx context.Context, q querier, projectID, folder string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT title FROM documents WHERE project_id = ? AND folder = ?", projectID, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles[t] = true
	}
	return titles, rows.Err()
}

// subfolders returns the names of the folders directly inside folder.
func (s *Store) subfolders(ctx context.Context, q querier, projectID, folder string) (map[string]bool, error) {
	docs, err := s.within(ctx, q, projectID, folder)
	if err != nil {
		return nil, err
	}
	folders, err := s.foldersWithin(ctx, q, projectID, folder)
	if err != nil {
		return nil, err
	}

	folder = vpath.Normalize(folder)
	depth := vpath.Depth(folder)
	names := make(map[string]bool)
	add := func(p string) {
		p = vpath.Normalize(p)
		for vpath.Depth(p) > depth+1 {
			p = vpath.Parent(p)
		}
		if p != folder && vpath.Parent(p) == folder {
			names[vpath.Base(p)] = true
		}
	}
	for _, d := range docs {
		add(d.folder)
	}
	for _, f := range folders {
		add(f)
	}
	return names, nil
}

// Move relocates a document or folder into targetFolder.
func (s *Store) Move(ctx context.Context, projectID, source, targetFolder string) (string, error) {
	if err := validProject("move", projectID); err != nil {
		return "", err
	}
	if vpath.IsRoot(source) {
		return "", vaulterr.Invalid("move", "source path is required")
	}
	newPath := vpath.Join(targetFolder, vpath.Base(source))
	if err := s.Rename(ctx, projectID, source, newPath); err != nil {
		var verr *vaulterr.Error
		if errors.As(err, &verr) {
			verr.Op = strings.Replace(verr.Op, "rename", "move", 1)
		}
		return "", err
	}
	return newPath, nil
}

// Rename moves a document or a folder subtree to newPath.
func (s *Store) Rename(ctx context.Context, projectID, oldPath, newPath string) error {
	if err := validProject("rename", projectID); err != nil {
		return err
	}
	if vpath.IsRoot(oldPath) || vpath.IsRoot(newPath) {
		return vaulterr.Invalid("rename", "both paths are required")
	}
	oldPath, newPath = vpath.Normalize(oldPath), vpath.Normalize(newPath)
	if oldPath == newPath {
		return nil
	}

	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		rec, err := s.lookup(ctx, tx, projectID, oldPath)
		if err == nil {
			folder, title, ext := splitPath(newPath)
			_, err = tx.ExecContext(ctx,
				"UPDATE documents SET folder = ?, title = ?, file_ext = ?, type = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
				folder, title, ext, string(filetype.Classify(ext)), rec.id)
			return err
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return s.renameFolder(ctx, tx, projectID, oldPath, newPath)
	})
	return wrap("rename", oldPath, err)
}

func (s *Store) renameFolder(ctx context.Context, tx *sql.Tx, projectID, oldPath, newPath string) error {
	exists, err := s.folderExists(ctx, tx, projectID, oldPath)
	if err != nil {
		return err
	}
	if !exists {
		return vaulterr.E(vaulterr.NotFound, "rename", oldPath, sql.ErrNoRows)
	}
	if vpath.Within(newPath, oldPath) {
		return vaulterr.Invalid("rename folder", "cannot move %s into itself", oldPath)
	}
	taken, err := s.folderExists(ctx, tx, projectID, newPath)
	if err != nil {
		return err
	}
	if taken {
		return vaulterr.Exists("rename folder", newPath, true, fs.ErrExist)
	}

	docs, err := s.within(ctx, tx, projectID, oldPath)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE documents SET folder = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			vpath.Rebase(d.folder, oldPath, newPath), d.id); err != nil {
			return err
		}
	}

	folders, err := s.foldersWithin(ctx, tx, projectID, oldPath)
	if err != nil {
		return err
	}
	for _, f := range folders {
		if _, err := tx.ExecContext(ctx, "UPDATE folders SET path = ? WHERE project_id = ? AND path = ?",
			vpath.Rebase(f, oldPath, newPath), projectID, f); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a document, or a folder with everything below it.
func (s *Store) Delete(ctx context.Context, projectID, path string) error {
	if err := validProject("delete", projectID); err != nil {
		return err
	}
	if vpath.IsRoot(path) {
		return vaulterr.Invalid("delete", "refusing to delete the vault root")
	}
	path = vpath.Normalize(path)

	err := s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		rec, err := s.lookup(ctx, tx, projectID, path)
		if err == nil {
			_, err = tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", rec.id)
			return err
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		prefix := subtreePrefix(path)
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE project_id = ? AND (folder = ? OR substr(folder, 1, ?) = ?)",
			projectID, path, utf8.RuneCountInString(prefix), prefix); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"DELETE FROM folders WHERE project_id = ? AND (path = ? OR substr(path, 1, ?) = ?)",
			projectID, path, utf8.RuneCountInString(prefix), prefix)
		return err
	})
	return wrap("delete", path, err)
}

// ImportExternalFile stores a copy of a host file as a new document.
func (s *Store) ImportExternalFile(ctx context.Context, projectID, source, targetFolder string) (types.FileInfo, error) {
	if err := validProject("import", projectID); err != nil {
		return types.FileInfo{}, err
	}
	info, err := os.Stat(source)
	if err != nil {
		return types.FileInfo{}, wrap("import", source, err)
	}
	if info.IsDir() {
		return types.FileInfo{}, vaulterr.Invalid("import", "cannot import a directory: %s", source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return types.FileInfo{}, wrap("import", source, err)
	}

	newPath := vpath.Join(targetFolder, filepath.Base(source))
	folder, title, ext := splitPath(newPath)
	err = s.inTx(ctx, projectID, func(tx *sql.Tx) error {
		return insertDocument(ctx, tx, projectID, folder, title, ext, data)
	})
	if err != nil {
		return types.FileInfo{}, wrap("import", newPath, err)
	}

	return types.FileInfo{
		Filename: title,
		FileType: string(filetype.Classify(ext)),
		Ext:      strings.ToLower(ext),
		Size:     int64(len(data)),
		Path:     newPath,
	}, nil
}

// wrap classifies a database error at the backend boundary.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var verr *vaulterr.Error
	if errors.As(err, &verr) {
		return err
	}

	kind := vaulterr.BackendFailure
	var serr *sqlitedriver.Error
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, fs.ErrNotExist):
		kind = vaulterr.NotFound
	case errors.As(err, &serr) && isUniqueViolation(serr.Code()):
		kind = vaulterr.AlreadyExists
	}
	if !filepath.IsAbs(path) {
		path = vpath.Normalize(path)
	}
	return vaulterr.E(kind, op, path, err)
}

func isUniqueViolation(code int) bool {
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
