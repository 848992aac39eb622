package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Addr    string        `split_words:"true" default:":8080"`
	APIKey  string        `envconfig:"API_KEY" required:"true"`
	Timeout time.Duration `split_words:"true" default:"5s"`
}

type validatedConfig struct {
	Mode string `default:"bad"`
}

func (c *validatedConfig) Validate() error {
	if c.Mode == "bad" {
		return errors.New("mode must not be bad")
	}
	return nil
}

func TestNewReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_API_KEY", "secret")
	t.Setenv("SAMPLE_TIMEOUT", "2s")

	conf, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.APIKey != "secret" {
		t.Fatalf("APIKey = %q, want secret", conf.APIKey)
	}
	if conf.Addr != ":8080" {
		t.Fatalf("Addr = %q, want default", conf.Addr)
	}
	if conf.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", conf.Timeout)
	}
}

func TestNewMissingRequired(t *testing.T) {
	if _, err := New[sampleConfig]("MISSINGPREFIX"); err == nil {
		t.Fatal("expected error for missing required key")
	}
}

func TestNewRunsValidate(t *testing.T) {
	if _, err := New[validatedConfig]("VALIDATED"); err == nil {
		t.Fatal("expected validation error")
	}

	t.Setenv("VALIDATED_MODE", "good")
	conf, err := New[validatedConfig]("VALIDATED")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Mode != "good" {
		t.Fatalf("Mode = %q, want good", conf.Mode)
	}
}

func TestExportEnvironmentKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("FILECFG_API_KEY=from-file\nFILECFG_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FILECFG_ADDR", ":7000")
	t.Cleanup(func() {
		_ = os.Unsetenv("FILECFG_API_KEY")
	})

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}
	if got := os.Getenv("FILECFG_API_KEY"); got != "from-file" {
		t.Fatalf("FILECFG_API_KEY = %q, want from-file", got)
	}
	if got := os.Getenv("FILECFG_ADDR"); got != ":7000" {
		t.Fatalf("FILECFG_ADDR = %q, want env value to win", got)
	}
}
