package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileYAML)
	content := `
controller: "  https://controller.example.com  "
csv_file: report.csv
auth_token_file: /secrets/token.txt
timeout: 90s
login_interval: 2s
max_login_attempts: 5
allow_unresolved: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Controller != "https://controller.example.com" {
		t.Fatalf("expected trimmed controller, got %q", cfg.Controller)
	}
	if cfg.CSVFile != "report.csv" {
		t.Fatalf("expected csv_file=report.csv, got %q", cfg.CSVFile)
	}
	if cfg.AuthTokenFile != "/secrets/token.txt" {
		t.Fatalf("unexpected auth_token_file: %q", cfg.AuthTokenFile)
	}
	if cfg.Timeout != "90s" || cfg.LoginInterval != "2s" {
		t.Fatalf("unexpected durations: timeout=%q login_interval=%q", cfg.Timeout, cfg.LoginInterval)
	}
	if cfg.MaxLoginAttempts == nil || *cfg.MaxLoginAttempts != 5 {
		t.Fatalf("expected max_login_attempts=5, got %v", cfg.MaxLoginAttempts)
	}
	if cfg.AllowUnresolved == nil || !*cfg.AllowUnresolved {
		t.Fatalf("expected allow_unresolved=true, got %v", cfg.AllowUnresolved)
	}
}

func TestLoadFileRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileYAML)
	if err := os.WriteFile(path, []byte("controller: [unterminated\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAutoLoadFilePrefersCWD(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	cwdFile := filepath.Join(cwd, DefaultConfigFileYAML)
	homeFile := filepath.Join(home, DefaultConfigFileYAML)

	if err := os.WriteFile(cwdFile, []byte("controller: https://cwd.example.com\n"), 0o644); err != nil {
		t.Fatalf("failed to write cwd config file: %v", err)
	}
	if err := os.WriteFile(homeFile, []byte("controller: https://home.example.com\n"), 0o644); err != nil {
		t.Fatalf("failed to write home config file: %v", err)
	}

	t.Setenv("HOME", home)
	t.Chdir(cwd)

	cfg, path, err := AutoLoadFile("")
	if err != nil {
		t.Fatalf("AutoLoadFile failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config file to be loaded")
	}
	if cfg.Controller != "https://cwd.example.com" {
		t.Fatalf("expected cwd config to win, got %q", cfg.Controller)
	}
	if path != DefaultConfigFileYAML {
		t.Fatalf("expected returned path to be %q, got %q", DefaultConfigFileYAML, path)
	}
}

func TestAutoLoadFileFallsBackToAppDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	appDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte("csv_file: app.csv\n"), 0o644); err != nil {
		t.Fatalf("failed to write app config file: %v", err)
	}

	cfg, path, err := AutoLoadFile(appDir)
	if err != nil {
		t.Fatalf("AutoLoadFile failed: %v", err)
	}
	if cfg == nil || cfg.CSVFile != "app.csv" {
		t.Fatalf("expected app dir config, got %+v", cfg)
	}
	if path != filepath.Join(appDir, "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestLoadFirstExistingFileNoMatch(t *testing.T) {
	cfg, path, err := LoadFirstExistingFile([]string{
		filepath.Join(t.TempDir(), "missing-1.yaml"),
		filepath.Join(t.TempDir(), "missing-2.yaml"),
	})
	if err != nil {
		t.Fatalf("expected no error when no files found, got %v", err)
	}
	if cfg != nil || path != "" {
		t.Fatalf("expected nil config and empty path, got cfg=%v path=%q", cfg, path)
	}
}

func TestLoadFirstExistingFileDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := LoadFirstExistingFile([]string{dir}); err == nil {
		t.Fatal("expected error for directory candidate")
	}
}
