// Package sqlite implements the legacy vault backend on a SQLite database.
//
// The store uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Document bodies are kept in the documents table; a
// document's virtual path is derived from its folder, title and extension.
// Folders that hold no documents are recorded in the folders table so they
// survive a scan.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
package sqlite
