package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vault"
)

type (
	// ProjectInput addresses a project's vault.
	ProjectInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
	}

	// StatusOutput summarizes a project session.
	StatusOutput struct {
		Project      string `json:"project"`
		SessionID    string `json:"sessionId"`
		State        string `json:"state"`
		ActivePath   string `json:"activePath,omitempty"`
		Dirty        bool   `json:"dirty"`
		Documents    int    `json:"documents"`
		EmptyFolders int    `json:"emptyFolders"`
		LastError    string `json:"lastError,omitempty"`
	}

	// ListInput contains parameters for listing documents.
	ListInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Folder  string `json:"folder,omitempty" jsonschema:"Only list documents directly in this folder (default: all)"`
	}

	// ListOutput contains documents grouped by folder.
	ListOutput struct {
		Groups       []types.FolderGroup `json:"groups"`
		EmptyFolders []string            `json:"emptyFolders,omitempty"`
		Total        int                 `json:"total"`
	}

	// TreeOutput contains the rendered folder tree.
	TreeOutput struct {
		Tree    string   `json:"tree"`
		Folders []string `json:"folders"`
	}

	// OpenInput contains parameters for opening a document.
	OpenInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Path    string `json:"path" jsonschema:"Path of the document relative to the vault root"`
	}

	// DocumentOutput describes the active document.
	DocumentOutput struct {
		Path        string         `json:"path"`
		Title       string         `json:"title"`
		Heading     string         `json:"heading,omitempty"`
		Folder      string         `json:"folder"`
		Type        string         `json:"type"`
		Size        string         `json:"size"`
		MIMEType    string         `json:"mimeType,omitempty"`
		Frontmatter map[string]any `json:"fm,omitempty"`
		Tags        []string       `json:"tags,omitempty"`
		Preview     bool           `json:"preview"`
		Content     string         `json:"content,omitempty"`
		Data        string         `json:"data,omitempty"`
		Dirty       bool           `json:"dirty"`
		URI         string         `json:"uri,omitempty"`
		ObsidianURI string         `json:"obsidianUri,omitempty"`
	}

	// ContentInput contains the new text of the active document.
	ContentInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Content string `json:"content" jsonschema:"Full markdown text of the active document"`
		Save    bool   `json:"save,omitempty" jsonschema:"Save immediately after updating (default: false)"`
	}

	// FrontmatterInput contains frontmatter updates for the active document.
	FrontmatterInput struct {
		Project     string         `json:"project" jsonschema:"Project id whose vault to use"`
		Frontmatter map[string]any `json:"frontmatter" jsonschema:"Fields to merge into the frontmatter; null removes a field"`
	}

	// CreateDocumentInput contains parameters for creating a document.
	CreateDocumentInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Title   string `json:"title" jsonschema:"Title of the new markdown document"`
		Folder  string `json:"folder,omitempty" jsonschema:"Folder to create the document in (default: vault root)"`
	}

	// CreateFolderInput contains parameters for creating a folder.
	CreateFolderInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Path    string `json:"path" jsonschema:"Path of the new folder"`
	}

	// RenameInput contains parameters for renaming a document or folder.
	RenameInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Path    string `json:"path" jsonschema:"Current path of the document or folder"`
		NewName string `json:"newName" jsonschema:"New title (documents keep their extension) or folder name"`
	}

	// TransferInput contains parameters for moving or copying.
	TransferInput struct {
		Project      string `json:"project" jsonschema:"Project id whose vault to use"`
		Path         string `json:"path" jsonschema:"Path of the document or folder"`
		TargetFolder string `json:"targetFolder" jsonschema:"Folder to place it in"`
	}

	// DeleteInput contains parameters for deleting.
	DeleteInput struct {
		Project string `json:"project" jsonschema:"Project id whose vault to use"`
		Path    string `json:"path" jsonschema:"Path of the document or folder"`
		Confirm string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// ImportInput contains parameters for importing host files.
	ImportInput struct {
		Project string   `json:"project" jsonschema:"Project id whose vault to use"`
		Sources []string `json:"sources" jsonschema:"Absolute paths of markdown, PDF or image files on the host"`
		Folder  string   `json:"folder,omitempty" jsonschema:"Folder to import into (default: vault root)"`
	}

	// ImportOutput contains per-file import results.
	ImportOutput struct {
		Results  []types.ImportResult `json:"results"`
		Imported int                  `json:"imported"`
	}

	// AttachmentInput contains an attachment to store.
	AttachmentInput struct {
		Project  string `json:"project" jsonschema:"Project id whose vault to use"`
		Filename string `json:"filename" jsonschema:"File name for the attachment"`
		Data     string `json:"data" jsonschema:"Base64 encoded file content"`
	}

	// AttachmentOutput contains the stored attachment reference.
	AttachmentOutput struct {
		Success  bool   `json:"success"`
		Path     string `json:"path"`
		Markdown string `json:"markdown"`
	}

	// RecentInput contains parameters for listing recent documents.
	RecentInput struct {
		Project string `json:"project,omitempty" jsonschema:"Only list documents of this project (default: all)"`
		Clear   bool   `json:"clear,omitempty" jsonschema:"Forget the recent documents of every project"`
	}

	// RecentOutput contains recently opened documents.
	RecentOutput struct {
		Documents []vault.RecentDocument `json:"documents"`
	}

	// LogLevelInput contains parameters for changing the log level.
	LogLevelInput struct {
		Level string `json:"level,omitempty" jsonschema:"New level: debug, info, warn or error (default: report the current level)"`
	}

	// LogLevelOutput reports the active log level.
	LogLevelOutput struct {
		Level string `json:"level"`
	}
)

func (a *app) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Open a project's vault if needed and report its session state: active document, unsaved changes and the last error.",
	}, a.handleStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh",
		Description: "Rescan a project's vault from storage, keeping the active document when it still exists.",
	}, a.handleRefresh)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "close_project",
		Description: "Close a project's session. Unsaved changes are discarded.",
	}, a.handleCloseProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List documents grouped by folder, plus folders that hold no documents directly.",
	}, a.handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tree",
		Description: "Render the vault's folder tree.",
	}, a.handleTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "open",
		Description: "Open a document and return it. Markdown comes back as text with parsed frontmatter, PDFs and images as base64 data.",
	}, a.handleOpen)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "active",
		Description: "Return the active document including unsaved changes.",
	}, a.handleActive)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update",
		Description: "Replace the text of the active markdown document. Changes stay unsaved unless save=true.",
	}, a.handleUpdate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_frontmatter",
		Description: "Merge fields into the frontmatter of the active markdown document. Changes stay unsaved until save.",
	}, a.handleUpdateFrontmatter)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save",
		Description: "Write unsaved changes of the active document. Does nothing when there are none.",
	}, a.handleSave)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "close_document",
		Description: "Close the active document, discarding unsaved changes.",
	}, a.handleCloseDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_document",
		Description: "Create a markdown document and open it. Fails if the name is taken in the folder.",
	}, a.handleCreateDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_folder",
		Description: "Create a folder, including missing parents.",
	}, a.handleCreateFolder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename",
		Description: "Rename a document or folder in place. Folders carry everything inside them.",
	}, a.handleRename)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move",
		Description: "Move a document or folder into another folder, keeping its name.",
	}, a.handleMove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "copy",
		Description: "Copy a document or folder into a folder. Taken names get a numbered copy suffix.",
	}, a.handleCopy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete",
		Description: "Delete a document, or a folder with everything inside it. Requires confirm='yes' for safety.",
	}, a.handleDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import",
		Description: "Copy markdown, PDF or image files from the host into the vault. Reports a result per file.",
	}, a.handleImport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "attach",
		Description: "Store an attachment in the vault's .attachments folder and return the markdown to embed it.",
	}, a.handleAttach)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent",
		Description: "List recently opened documents, most recent first. Set clear to forget them.",
	}, a.handleRecent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_level",
		Description: "Report or change the server's log level without restarting it.",
	}, a.handleLogLevel)
}
