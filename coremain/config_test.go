package coremain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sanchis/localit/pkg/keystore"
)

func Test_loadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log:
  level: warn
store:
  domain: books
  type: secondary
  primary:
    path: ./localit.db
    bucket: custom
    compress: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, fileUsed, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if fileUsed != path {
		t.Fatalf("unexpected file used: %s", fileUsed)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level %q", cfg.Log.Level)
	}
	if cfg.Store.Domain != "books" || cfg.Store.Type != keystore.TypeSecondary {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Store.Primary.Path != "./localit.db" || cfg.Store.Primary.Bucket != "custom" || !cfg.Store.Primary.Compress {
		t.Fatalf("unexpected primary config: %+v", cfg.Store.Primary)
	}
}

func Test_loadConfig_rejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  domian: typo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadConfig(path); err == nil {
		t.Fatal("unknown field should be rejected")
	}
}
