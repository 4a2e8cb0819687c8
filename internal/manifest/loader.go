package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelfetch/internal/common/fsutil"
	"modelfetch/pkg/types"
)

// Load parses a single manifest file.
func Load(path string) (types.ModelDescriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.ModelDescriptor{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(b, path)
}

// LoadDir scans a directory for *.yml / *.yaml manifests and parses each
// into a ModelDescriptor. Every malformed manifest in the directory is
// reported; one bad file does not hide the errors of another. Any parse
// error fails the whole load so structural problems surface before any
// network work starts.
func LoadDir(dir string) ([]types.ModelDescriptor, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var descs []types.ModelDescriptor
	var errs []error
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		low := strings.ToLower(name)
		if !strings.HasSuffix(low, ".yml") && !strings.HasSuffix(low, ".yaml") {
			continue
		}
		p := filepath.Join(abs, name)
		d, err := Load(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[d.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate model name %q in %s (already declared in %s)", d.Name, name, prev))
			continue
		}
		seen[d.Name] = name
		descs = append(descs, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return descs, nil
}
