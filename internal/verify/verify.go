// Package verify checks a local file against its declared size and digest.
// Files may exceed 400 MB, so hashing is incremental over fixed-size chunks
// and never loads the whole file.
package verify

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"modelfetch/pkg/types"
)

const chunkSize = 32 * 1024

// newHasher returns an incremental hasher for a supported algorithm.
func newHasher(algo string) (hash.Hash, error) {
	switch algo {
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algo)
	}
}

// File verifies the file at path against the expected checksum and size.
// Size is checked first from file metadata so an obviously wrong file is
// rejected before any hashing work. The digest comparison is
// case-insensitive over the hex encoding. Pure function over the file's
// bytes: no retries, no network, no mutation.
func File(path string, sum types.Checksum, expectedSize int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() != expectedSize {
		return &SizeMismatchError{Path: path, Expected: expectedSize, Actual: info.Size()}
	}

	h, err := newHasher(sum.Algorithm)
	if err != nil {
		return err
	}
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if !sum.Equal(actual) {
		return &ChecksumMismatchError{
			Path:      path,
			Algorithm: sum.Algorithm,
			Expected:  sum.Digest,
			Actual:    actual,
		}
	}
	return nil
}
