package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("got %d up and %d down migrations, want a matching non-zero pair", ups, downs)
	}

	if _, err := iofs.New(migrationFiles, "migrations"); err != nil {
		t.Errorf("iofs.New: %v", err)
	}
}

func TestInitMigrationEnforcesUniqueness(t *testing.T) {
	b, err := fs.ReadFile(migrationFiles, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(b)

	for _, want := range []string{
		"clerk_id    VARCHAR(255) UNIQUE NOT NULL",
		"UNIQUE(user_id, type, ref)",
		"UNIQUE(user_id, name)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("init migration missing %q", want)
		}
	}
}
