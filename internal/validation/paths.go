// Package validation provides input validation for paths sent to and
// received from the carver server.
package validation

import (
	"fmt"
	"strings"
)

// ValidateFilename validates a bare filename (not a path). This should be
// used for names received from external sources, like the server inventory,
// before using them in filepath.Join operations.
//
// Returns an error if the filename:
//   - Is empty
//   - Contains path separators (/ or \)
//   - Contains ".." components
//   - Contains null bytes
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %s", filename)
	}

	// Reject path separators (both Unix and Windows style)
	if strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, '\\') {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	// Since separators are rejected above, only the literal ".." name can
	// traverse. Names like "foo..bar.txt" stay legal.
	if filename == ".." {
		return fmt.Errorf("filename cannot be '..': %s", filename)
	}

	return nil
}

// ValidateRemotePath validates a workspace-relative path before it is sent
// to the server. Remote paths always use forward slashes and are resolved
// against a workspace root, so absolute paths and traversal components are
// rejected client-side rather than trusting the server to refuse them.
//
// An empty path is allowed; it addresses the workspace root itself.
func ValidateRemotePath(path string) error {
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains null byte: %s", path)
	}

	if strings.ContainsRune(path, '\\') {
		return fmt.Errorf("remote paths use forward slashes: %s", path)
	}

	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("remote path must be workspace-relative: %s", path)
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fmt.Errorf("remote path cannot traverse above the workspace root: %s", path)
		}
	}

	return nil
}
