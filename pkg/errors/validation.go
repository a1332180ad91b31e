package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// moduleIDRegex matches module identifiers. The dependency-spec grammar
// reserves ':' and ';', and range text reserves brackets and commas, so ids
// are limited to a conservative identifier alphabet.
var moduleIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateModuleID validates a module identifier for use as a graph key
// and inside dependency-spec text.
//
// The validation rules are:
//   - No empty ids
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - Only letters, digits, '.', '_' and '-', starting with a letter or digit
func ValidateModuleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidModuleID, "module id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidModuleID, "module id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidModuleID, "module id %q contains whitespace or control characters", id)
		}
	}

	if !moduleIDRegex.MatchString(id) {
		return New(ErrCodeInvalidModuleID, "invalid module id: %q", id)
	}

	return nil
}

// ValidateManifestFilename validates a descriptor filename for safety.
// It ensures the filename is a simple basename without path components
// and carries one of the supported extensions.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml", ".json":
		return nil
	default:
		return New(ErrCodeInvalidManifest, "manifest %q must be a .toml or .json file", filename)
	}
}

// ValidatePath validates a path relative to a module directory.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
