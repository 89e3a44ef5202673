package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeName validates a node name for use as a diagram label and
// as part of generated file names.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidTopology, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidTopology, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTopology, "node name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateOneOf checks that value is one of allowed, returning an error
// with the given code that lists the allowed values otherwise.
func ValidateOneOf(code Code, field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(code, "invalid %s: %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidatePath validates a client-supplied relative path, such as a
// download file name. It prevents path traversal and bounds the length.
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
