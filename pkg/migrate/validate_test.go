package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Review Index")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_review_index.sql") {
		t.Fatalf("unexpected filename: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(b), marker) {
			t.Fatalf("migration missing marker %q", marker)
		}
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration failed validation: %v", err)
	}
}

func TestValidateRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "001_bad.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected validation error for %s", bad)
	}
}
