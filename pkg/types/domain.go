package types

import "strings"

// Checksum is an expected content digest: a hash algorithm name plus a
// lowercase hex digest. Immutable once declared in a manifest.
type Checksum struct {
	// Hash algorithm, e.g. "sha256".
	// example: sha256
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	// Hex-encoded digest. Comparison is case-insensitive.
	// example: 3caf25cd54e1cdcf4a5f7d4e0d0b1f0c...
	Digest string `json:"digest" yaml:"digest"`
}

// Equal reports whether a computed hex digest matches this checksum.
// Hex comparison is case-insensitive.
func (c Checksum) Equal(hexDigest string) bool {
	return strings.EqualFold(c.Digest, hexDigest)
}

// String renders the checksum as "algo:hex".
func (c Checksum) String() string { return c.Algorithm + ":" + strings.ToLower(c.Digest) }

// FileEntry is one downloadable artifact declared by a model manifest.
type FileEntry struct {
	// Path under the model's namespace, unique within a descriptor.
	// example: FP32/mobilenet-v2.xml
	RelativePath string `json:"relative_path"`
	// Expected byte length. Always >= 0.
	// example: 14212731
	SizeBytes int64 `json:"size_bytes"`
	// Expected content digest for the fully downloaded file.
	Checksum Checksum `json:"checksum"`
	// Remote location to fetch from (https).
	// example: https://storage.openvinotoolkit.org/.../mobilenet-v2.xml
	SourceURI string `json:"source_uri"`
}

// ModelDescriptor identifies one pretrained model and its artifacts.
// Descriptors are immutable once loaded; a corrected descriptor is a new
// version, never an in-place edit.
type ModelDescriptor struct {
	// Unique human-readable identifier.
	// example: mobilenet-v2
	Name string `json:"name"`
	// Free-text description.
	Description string `json:"description,omitempty"`
	// Task tag, e.g. "classification", "instance-segmentation".
	// example: classification
	TaskType string `json:"task_type,omitempty"`
	// Originating ML framework, e.g. "caffe", "tf", "onnx".
	// example: caffe
	Framework string `json:"framework,omitempty"`
	// URI of the license text.
	License string `json:"license,omitempty"`
	// Declared artifacts. Order as declared; entries are independent.
	Files []FileEntry `json:"files"`
}

// TotalSize returns the declared size of all files in bytes.
func (d ModelDescriptor) TotalSize() int64 {
	var n int64
	for _, f := range d.Files {
		n += f.SizeBytes
	}
	return n
}
