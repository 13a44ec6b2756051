package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Scan.FPR != 0.01 {
		t.Errorf("default fpr = %v, want 0.01", c.Scan.FPR)
	}
	if c.Scan.NReport == nil || *c.Scan.NReport != 1 {
		t.Errorf("default nreport = %v, want 1", c.Scan.NReport)
	}
	if c.Scan.ScanRC == nil || !*c.Scan.ScanRC {
		t.Errorf("default scan_rc = %v, want true", c.Scan.ScanRC)
	}
	if c.Logging.Level != "info" {
		t.Errorf("default level = %q, want info", c.Logging.Level)
	}
}

func TestLoadWithoutAnyFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Scan.FPR != 0.01 {
		t.Errorf("fpr = %v, want built-in default", c.Scan.FPR)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pfmscan.yaml")
	content := "scan:\n  fpr: 0.05\n  nreport: 0\n  scan_rc: false\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Scan.FPR != 0.05 {
		t.Errorf("fpr = %v, want 0.05", c.Scan.FPR)
	}
	if *c.Scan.NReport != 0 {
		t.Errorf("explicit nreport 0 = %d, want kept", *c.Scan.NReport)
	}
	if *c.Scan.ScanRC {
		t.Error("explicit scan_rc false was not kept")
	}
	if c.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", c.Logging.Level)
	}
}

func TestLoadEnvLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	if err := os.WriteFile(path, []byte("scan:\n  ncpus: 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Scan.NCPUs != 4 {
		t.Errorf("ncpus = %d, want 4", c.Scan.NCPUs)
	}
}

func TestLoadEnvVarExpansion(t *testing.T) {
	t.Setenv("PFMSCAN_TEST_GENOME", "/data/hg38.fa")
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	content := "scan:\n  genome: ${PFMSCAN_TEST_GENOME}\nlogging:\n  level: ${PFMSCAN_TEST_LEVEL:-warn}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Scan.Genome != "/data/hg38.fa" {
		t.Errorf("genome = %q, want expanded env value", c.Scan.Genome)
	}
	if c.Logging.Level != "warn" {
		t.Errorf("level = %q, want fallback warn", c.Logging.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("explicit missing path must fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("scan:\n  fpr: 2.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "fpr") {
		t.Errorf("invalid fpr error = %v", err)
	}

	notYaml := filepath.Join(t.TempDir(), "garbage.yaml")
	if err := os.WriteFile(notYaml, []byte(":\t:::"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(notYaml); err == nil {
		t.Error("unparseable yaml must fail")
	}
}
