package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxCodecValue is the largest vertex id or count representable by the
// fixed 2-byte fields of the binary codecs.
const MaxCodecValue = 1<<16 - 1

// ValidateCodecValue checks that v fits a 2-byte codec field.
// what names the field in the error message (e.g. "vertex id").
func ValidateCodecValue(what string, v int) error {
	if v < 0 || v > MaxCodecValue {
		return New(ErrCodeOutOfRange, "%s %d outside [0, %d]", what, v, MaxCodecValue)
	}
	return nil
}

// ValidateTag checks that a history tag is exactly two printable ASCII bytes.
func ValidateTag(tag string) error {
	if len(tag) != 2 {
		return New(ErrCodeInvalidInput, "tag %q must be exactly 2 bytes", tag)
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x20 || tag[i] > 0x7e {
			return New(ErrCodeInvalidInput, "tag %q contains non-printable bytes", tag)
		}
	}
	return nil
}

// bucketTypeRegex matches bucket type labels used in file names.
var bucketTypeRegex = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// ValidateBucketType validates the type label of an output bucket.
// Labels end up in file names and store keys, so they are kept to short
// lowercase alphanumerics.
func ValidateBucketType(typ string) error {
	if !bucketTypeRegex.MatchString(typ) {
		return New(ErrCodeInvalidInput, "invalid bucket type %q", typ)
	}
	return nil
}

// ValidatePath validates a data path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
