package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nmanifest_dir: /m\ndest_dir: /d\nconcurrency: 8\nmax_attempts: 3\nlog_level: debug\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ManifestDir != "/m" || cfg.DestDir != "/d" || cfg.Concurrency != 8 || cfg.MaxAttempts != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","manifest_dir":"/mm","dest_dir":"/dd","concurrency":2,"retry_base_ms":500,"cors_enabled":true,"cors_origins":["*"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ManifestDir != "/mm" || cfg.Concurrency != 2 || cfg.RetryBaseMS != 500 || !cfg.CORSEnabled || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmanifest_dir=\"/x\"\ndest_dir=\"/y\"\nmax_attempts=7\nretry_max_ms=60000\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ManifestDir != "/x" || cfg.DestDir != "/y" || cfg.MaxAttempts != 7 || cfg.RetryMaxMS != 60000 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	bad := writeTempFile(t, d, "bad.yaml", "addr: [broken")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected yaml error")
	}
	if _, err := Load(filepath.Join(d, "absent.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
