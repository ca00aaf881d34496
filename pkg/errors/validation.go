package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// The name is interpolated into registry URLs and filesystem paths, so it
// rejects anything usable for path traversal or injection.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 256 characters
//
// Registry-specific naming rules (crate name grammar) are left to the
// registry itself.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
