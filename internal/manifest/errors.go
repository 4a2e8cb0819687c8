package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Issue is one field-level violation found while parsing a manifest.
type Issue struct {
	// Field path inside the manifest, e.g. "files[1].size".
	Field string
	// 1-based line in the source file, 0 when unknown.
	Line int
	Msg  string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", i.Field, i.Line, i.Msg)
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Msg)
}

// MalformedError reports every violation found in one manifest file so a
// caller sees all problems in a single pass.
type MalformedError struct {
	Path   string
	Issues []Issue
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed manifest %s:", e.Path)
	for _, iss := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(iss.String())
	}
	return b.String()
}

// IsMalformed reports whether err (or anything it wraps) is a manifest
// parse failure.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
