package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	homedir "github.com/mitchellh/go-homedir"
)

// isolate points every config search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	homedir.DisableCache = true
	t.Setenv("HOME", dir)
	t.Setenv("MEETAPP_CONFIG_PATH", dir)
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 10 || cfg.MinRecords != 5 || cfg.UserID != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if want := filepath.Join(home, ".meetapp"); cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MEETAPP_USER_ID", "7")
	t.Setenv("MEETAPP_TOKEN", "abc")
	t.Setenv("MEETAPP_TIMEOUT", "5s")
	t.Setenv("MEETAPP_LOCALE", "pt-BR")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserID != 7 || cfg.Token != "abc" || cfg.Timeout != 5*time.Second || cfg.Locale != "pt-BR" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	body := "api_url: http://example.test/api\npage_size: 20\ndata_dir: " + filepath.Join(dir, "data") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".meetapp.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://example.test/api" || cfg.PageSize != 20 {
		t.Errorf("file not applied: %+v", cfg)
	}
	if cfg.MinRecords != 5 {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".meetapp.yaml"), []byte("page_size: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(New()); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.APIURL = "localhost" }, "api_url"},
		{"offline ignores url", func(c *Config) { c.APIURL = ""; c.Offline = true }, ""},
		{"page size", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"min records", func(c *Config) { c.MinRecords = -1 }, "min_records"},
		{"locale", func(c *Config) { c.Locale = "xx" }, "locale"},
		{"data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ".meetapp.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("second WriteDefault should refuse to overwrite")
	}

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 30*time.Second || cfg.DatePattern != Default().DatePattern {
		t.Errorf("written defaults did not load back: %+v", cfg)
	}
}
