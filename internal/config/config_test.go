package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Learn.Algorithm != "lstar" {
		t.Errorf("expected default algorithm 'lstar', got %q", cfg.Learn.Algorithm)
	}

	if !cfg.Learn.OpenBrowser {
		t.Error("expected learn.open_browser to be true")
	}

	if cfg.Bench.Repeat != 10 {
		t.Errorf("expected default repeat 10, got %d", cfg.Bench.Repeat)
	}

	if !cfg.Bench.Cache || !cfg.Bench.CollectGarbage {
		t.Error("expected bench.cache and bench.collect_garbage to be true")
	}

	if cfg.Series.Lower != 10 || cfg.Series.Upper != 1000 || cfg.Series.Step != 10 {
		t.Errorf("unexpected series bounds %+v", cfg.Series)
	}

	if len(cfg.Series.AlphabetSizes) != 3 || cfg.Series.AlphabetSizes[2] != 100 {
		t.Errorf("unexpected alphabet sizes %v", cfg.Series.AlphabetSizes)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
learn:
  algorithm: rs
  interactive: true
  open_browser: false
bench:
  repeat: 3
  cache: false
  learners: [lstar, dt]
series:
  lower: 5
  upper: 50
  step: 5
  alphabet_sizes: [2, 4]
state:
  db_path: ${TEST_LEARNLAB_HOME}/runs.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TEST_LEARNLAB_HOME", "/data")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Learn.Algorithm != "rs" {
		t.Errorf("expected algorithm 'rs', got %q", cfg.Learn.Algorithm)
	}

	if !cfg.Learn.Interactive || cfg.Learn.OpenBrowser {
		t.Errorf("unexpected learn config %+v", cfg.Learn)
	}

	if cfg.Bench.Repeat != 3 || cfg.Bench.Cache {
		t.Errorf("unexpected bench config %+v", cfg.Bench)
	}

	if len(cfg.Bench.Learners) != 2 || cfg.Bench.Learners[1] != "dt" {
		t.Errorf("expected learners [lstar dt], got %v", cfg.Bench.Learners)
	}

	if cfg.Series.Upper != 50 || len(cfg.Series.AlphabetSizes) != 2 {
		t.Errorf("unexpected series config %+v", cfg.Series)
	}

	if cfg.State.DBPath != "/data/runs.db" {
		t.Errorf("expected expanded db path, got %q", cfg.State.DBPath)
	}

	// Untouched keys keep their defaults
	if cfg.Learn.DotPath != "dot" || !cfg.Bench.CollectGarbage {
		t.Errorf("defaults lost: dot_path=%q collect_garbage=%v", cfg.Learn.DotPath, cfg.Bench.CollectGarbage)
	}
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("bench:\n  repeat: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("LEARNLAB_BENCH_REPEAT", "7")
	t.Setenv("LEARNLAB_LEARN_ALGORITHM", "dt")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Bench.Repeat != 7 {
		t.Errorf("expected env repeat 7, got %d", cfg.Bench.Repeat)
	}
	if cfg.Learn.Algorithm != "dt" {
		t.Errorf("expected env algorithm 'dt', got %q", cfg.Learn.Algorithm)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("bench:\n  repeat: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("expected validation error for repeat 0")
	}

	if _, err := LoadFromPath(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "learnlab")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("bench:\n  repeat: 4\n  cache: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	nested := filepath.Join(project, "sub")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ProjectConfigName), []byte("bench:\n  repeat: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bench.Repeat != 2 {
		t.Errorf("expected project repeat 2, got %d", cfg.Bench.Repeat)
	}
	if cfg.Bench.Cache {
		t.Error("expected user cache=false to survive the project merge")
	}
	if got := GetProjectConfigPath(); filepath.Base(got) != ProjectConfigName {
		t.Errorf("GetProjectConfigPath() = %q", got)
	}
}

func TestSave(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	if err := Save("bench.repeat", "5"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save("learn.algorithm", "mp"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save("no.such", "1"); err == nil {
		t.Error("expected error saving unknown key")
	}

	cfg, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.Bench.Repeat != 5 || cfg.Learn.Algorithm != "mp" {
		t.Errorf("saved values not loaded: repeat=%d algorithm=%q", cfg.Bench.Repeat, cfg.Learn.Algorithm)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir := getUserConfigDir()
	expected := "/custom/config/learnlab"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
