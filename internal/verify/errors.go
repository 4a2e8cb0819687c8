package verify

import (
	"errors"
	"fmt"
)

// SizeMismatchError reports an observed length different from the declared one.
type SizeMismatchError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch for %s: expected %d bytes, got %d", e.Path, e.Expected, e.Actual)
}

// IsSizeMismatch reports whether err indicates a size mismatch.
func IsSizeMismatch(err error) bool {
	var se *SizeMismatchError
	return errors.As(err, &se)
}

// ChecksumMismatchError reports a digest different from the declared one.
type ChecksumMismatchError struct {
	Path      string
	Algorithm string
	Expected  string
	Actual    string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s:%s, got %s", e.Path, e.Algorithm, e.Expected, e.Actual)
}

// IsChecksumMismatch reports whether err indicates a digest mismatch.
func IsChecksumMismatch(err error) bool {
	var ce *ChecksumMismatchError
	return errors.As(err, &ce)
}
