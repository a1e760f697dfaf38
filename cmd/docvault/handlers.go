package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/frontmatter"
	"github.com/taigrr/docvault/internal/logging"
	"github.com/taigrr/docvault/internal/projector"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/uri"
	"github.com/taigrr/docvault/internal/vault"
	"github.com/taigrr/docvault/internal/vaulterr"
	"github.com/taigrr/docvault/internal/vpath"
)

var errNoActive = errors.New("no document is open")

func (a *app) session(ctx context.Context, project string) (*vault.Session, error) {
	return a.manager.Open(ctx, project)
}

// failed returns err with the user-facing message the session recorded for
// it, falling back to the configured locale.
func (a *app) failed(s *vault.Session, err error) error {
	if s != nil {
		if msg := s.LastError(); msg != "" {
			return errors.New(msg)
		}
	}
	return fmt.Errorf("%s", a.cfg.VaultLocale().Message(err))
}

func (a *app) result(s *vault.Session, path string, err error) (*mcp.CallToolResult, types.OperationResult, error) {
	if err != nil {
		err = a.failed(s, err)
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Success: false, Path: path, Message: err.Error()}, err
	}
	return nil, types.OperationResult{Success: true, Path: path}, nil
}

func documentOutput(s *vault.Session, doc vault.ActiveDocument) DocumentOutput {
	rec := doc.Record
	out := DocumentOutput{
		Path:        rec.Path,
		Title:       rec.Title,
		Folder:      rec.Folder,
		Type:        rec.Type,
		Size:        filetype.FormatSize(rec.FileSize),
		MIMEType:    filetype.MIMEType(rec.FileExt),
		Frontmatter: doc.Frontmatter,
		Tags:        frontmatter.Tags(doc.Frontmatter),
		Preview:     filetype.Parse(rec.Type).Previewable(),
		Content:     doc.Content,
		Dirty:       doc.Dirty,
	}
	if heading, ok := frontmatter.Title(doc.Frontmatter); ok {
		out.Heading = heading
	}
	if len(doc.Binary) > 0 {
		out.Data = base64.StdEncoding.EncodeToString(doc.Binary)
	}
	if abs, err := s.AbsolutePath(rec.Path); err == nil {
		out.URI = uri.File(abs)
	}
	if vaultDir, err := s.AbsolutePath("/"); err == nil {
		out.ObsidianURI = uri.Obsidian(vaultDir, rec.Path)
	}
	return out
}

func (a *app) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, StatusOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, StatusOutput{}, a.failed(nil, err)
	}
	snap := s.Snapshot()
	return nil, StatusOutput{
		Project:      snap.ProjectID,
		SessionID:    snap.ID,
		State:        snap.State,
		ActivePath:   snap.ActivePath,
		Dirty:        snap.Dirty,
		Documents:    len(snap.Documents),
		EmptyFolders: len(snap.EmptyFolders),
		LastError:    snap.LastError,
	}, nil
}

func (a *app) handleRefresh(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	return a.result(s, s.Snapshot().ActivePath, s.Refresh(ctx))
}

func (a *app) handleCloseProject(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, types.OperationResult, error) {
	return a.result(nil, "", a.manager.Close(input.Project))
}

func (a *app) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, a.failed(nil, err)
	}
	snap := s.Snapshot()
	groups := projector.GroupByFolder(snap.Documents)

	if folder := strings.TrimSpace(input.Folder); folder != "" {
		folder = vpath.Normalize(folder)
		var filtered []types.FolderGroup
		for _, g := range groups {
			if g.Folder == folder {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}

	total := 0
	for _, g := range groups {
		total += len(g.Documents)
	}
	return nil, ListOutput{Groups: groups, EmptyFolders: snap.EmptyFolders, Total: total}, nil
}

func (a *app) handleTree(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, TreeOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, TreeOutput{}, a.failed(nil, err)
	}
	return nil, TreeOutput{
		Tree:    renderTree(s.ProjectID(), s.Snapshot().FileTree),
		Folders: s.Folders(),
	}, nil
}

func (a *app) handleOpen(ctx context.Context, req *mcp.CallToolRequest, input OpenInput) (*mcp.CallToolResult, DocumentOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DocumentOutput{}, a.failed(nil, err)
	}
	if err := s.OpenByPath(ctx, input.Path); err != nil {
		return &mcp.CallToolResult{IsError: true}, DocumentOutput{}, a.failed(s, err)
	}
	doc, _ := s.Active()
	return nil, documentOutput(s, doc), nil
}

func (a *app) handleActive(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, DocumentOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DocumentOutput{}, a.failed(nil, err)
	}
	doc, ok := s.Active()
	if !ok {
		return &mcp.CallToolResult{IsError: true}, DocumentOutput{}, errNoActive
	}
	return nil, documentOutput(s, doc), nil
}

func (a *app) handleUpdate(ctx context.Context, req *mcp.CallToolRequest, input ContentInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	path := s.Snapshot().ActivePath
	if err := s.UpdateContent(input.Content); err != nil {
		return a.result(s, path, err)
	}
	if input.Save {
		return a.result(s, path, s.Save(ctx))
	}
	return a.result(s, path, nil)
}

func (a *app) handleUpdateFrontmatter(ctx context.Context, req *mcp.CallToolRequest, input FrontmatterInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	return a.result(s, s.Snapshot().ActivePath, s.UpdateFrontmatter(input.Frontmatter))
}

func (a *app) handleSave(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	return a.result(s, s.Snapshot().ActivePath, s.Save(ctx))
}

func (a *app) handleCloseDocument(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	path := s.Snapshot().ActivePath
	s.Close()
	return a.result(s, path, nil)
}

func (a *app) handleCreateDocument(ctx context.Context, req *mcp.CallToolRequest, input CreateDocumentInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	path, err := s.CreateDocument(ctx, input.Title, input.Folder)
	return a.result(s, path, err)
}

func (a *app) handleCreateFolder(ctx context.Context, req *mcp.CallToolRequest, input CreateFolderInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	path, err := s.CreateFolder(ctx, input.Path)
	return a.result(s, path, err)
}

func (a *app) handleRename(ctx context.Context, req *mcp.CallToolRequest, input RenameInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	var newPath string
	if _, ok := s.Document(input.Path); ok {
		newPath, err = s.RenameDocument(ctx, input.Path, input.NewName)
	} else {
		newPath, err = s.RenameFolder(ctx, input.Path, input.NewName)
	}
	return a.result(s, newPath, err)
}

func (a *app) handleMove(ctx context.Context, req *mcp.CallToolRequest, input TransferInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	var newPath string
	if _, ok := s.Document(input.Path); ok {
		newPath, err = s.MoveDocument(ctx, input.Path, input.TargetFolder)
	} else {
		newPath, err = s.MoveFolder(ctx, input.Path, input.TargetFolder)
	}
	return a.result(s, newPath, err)
}

func (a *app) handleCopy(ctx context.Context, req *mcp.CallToolRequest, input TransferInput) (*mcp.CallToolResult, types.OperationResult, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, "", err)
	}
	var newPath string
	if _, ok := s.Document(input.Path); ok {
		newPath, err = s.CopyDocument(ctx, input.Path, input.TargetFolder)
	} else {
		newPath, err = s.CopyFolder(ctx, input.Path, input.TargetFolder)
	}
	return a.result(s, newPath, err)
}

func (a *app) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, types.OperationResult, error) {
	path := vpath.Normalize(input.Path)
	if input.Confirm != "yes" {
		return a.result(nil, path, vaulterr.Invalid("delete", "deletion not confirmed: set confirm='yes' to proceed"))
	}

	s, err := a.session(ctx, input.Project)
	if err != nil {
		return a.result(nil, path, err)
	}
	if _, ok := s.Document(path); ok {
		err = s.DeleteDocument(ctx, path)
	} else {
		err = s.DeleteFolder(ctx, path)
	}
	return a.result(s, path, err)
}

func (a *app) handleImport(ctx context.Context, req *mcp.CallToolRequest, input ImportInput) (*mcp.CallToolResult, ImportOutput, error) {
	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ImportOutput{}, a.failed(nil, err)
	}
	results := s.ImportFiles(ctx, input.Sources, input.Folder)

	imported := 0
	for _, r := range results {
		if r.Success {
			imported++
		}
	}
	return nil, ImportOutput{Results: results, Imported: imported}, nil
}

func (a *app) handleAttach(ctx context.Context, req *mcp.CallToolRequest, input AttachmentInput) (*mcp.CallToolResult, AttachmentOutput, error) {
	data, err := base64.StdEncoding.DecodeString(input.Data)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, AttachmentOutput{}, fmt.Errorf("invalid base64 data: %w", err)
	}

	s, err := a.session(ctx, input.Project)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, AttachmentOutput{}, a.failed(nil, err)
	}
	path, err := s.SaveAttachment(ctx, input.Filename, data)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, AttachmentOutput{}, a.failed(s, err)
	}

	image := filetype.Classify(vpath.Ext(path)) == filetype.Image
	return nil, AttachmentOutput{Success: true, Path: path, Markdown: uri.Embed(path, image)}, nil
}

func (a *app) handleRecent(ctx context.Context, req *mcp.CallToolRequest, input RecentInput) (*mcp.CallToolResult, RecentOutput, error) {
	if input.Clear {
		a.manager.ClearRecent()
	}
	return nil, RecentOutput{Documents: a.manager.Recent(input.Project)}, nil
}

func (a *app) handleLogLevel(ctx context.Context, req *mcp.CallToolRequest, input LogLevelInput) (*mcp.CallToolResult, LogLevelOutput, error) {
	if strings.TrimSpace(input.Level) != "" {
		if err := logging.SetLevel(input.Level); err != nil {
			return &mcp.CallToolResult{IsError: true}, LogLevelOutput{Level: logging.Level()}, err
		}
		a.logger.Info("log level changed", zap.String("level", logging.Level()))
	}
	return nil, LogLevelOutput{Level: logging.Level()}, nil
}
