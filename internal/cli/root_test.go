package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const listManifest = `name: squeezenet
framework: caffe
task_type: classification
files:
  - name: squeezenet.caffemodel
    size: 4096
    sha256: 9f1484d1f8900b7bcf1f18221374a15239f2f156a51a79b5b2aebd4f725a1d75
    source: https://example.com/squeezenet.caffemodel
`

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "squeezenet.yml"), []byte(listManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	out, err := execRoot(t, "list", "--manifest-dir", dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "squeezenet") || !strings.Contains(out, "caffe") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
}

func TestListCommand_MalformedManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("name: bad\nfiles:\n  - name: x\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	_, err := execRoot(t, "list", "--manifest-dir", dir)
	if err == nil {
		t.Fatal("expected error for malformed manifest")
	}
	if !strings.Contains(err.Error(), "size") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestConfigFileFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	manifestDir := filepath.Join(dir, "fromfile")
	if err := os.MkdirAll(manifestDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "manifest_dir: " + manifestDir + "\nlog_level: debug\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// File value used when the flag is left at its default.
	out, err := execRoot(t, "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("list with config: %v (output: %s)", err, out)
	}

	// An explicit flag overrides the file value.
	flagDir := t.TempDir()
	if _, err := execRoot(t, "list", "--config", cfgPath, "--manifest-dir", flagDir); err != nil {
		t.Fatalf("list with flag override: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "modelfetch") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
