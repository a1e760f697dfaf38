package types

type (
	// OperationResult reports the outcome of a vault operation to callers
	// that consume state rather than errors.
	OperationResult struct {
		Success bool   `json:"success"`
		Path    string `json:"path,omitempty"`
		Message string `json:"message,omitempty"`
	}

	// ImportResult is the per-file outcome of a batch import.
	ImportResult struct {
		Source  string `json:"source"`
		Name    string `json:"name"`
		Path    string `json:"path,omitempty"`
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}
)
