package shared

import (
	"context"
	"database/sql"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	newDB := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		ConfigureDatabase(db, 1, 1)
		t.Cleanup(func() { db.Close() })
		return db
	}

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_catalog" {
			t.Errorf("expected first migration create_catalog, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db := newDB(t)

		n, err := RunMigrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if n == 0 {
			t.Error("expected migrations to be applied")
		}

		for _, table := range []string{"tracks", "catalog_columns", "imports"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM imports LIMIT 1"); err == nil {
			t.Error("imports table should be dropped after rollback")
		}

		versions, err := AppliedVersions(ctx, db)
		if err != nil {
			t.Fatalf("failed to list versions: %v", err)
		}
		if len(versions) != n-1 {
			t.Errorf("expected %d applied versions after rollback, got %d", n-1, len(versions))
		}
	})

	t.Run("Rollback Empty", func(t *testing.T) {
		if err := RollbackMigration(ctx, newDB(t)); err == nil {
			t.Error("expected error when nothing has been applied")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db := newDB(t)

		if _, err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		n, err := RunMigrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
		if n != 0 {
			t.Errorf("expected no pending migrations, applied %d", n)
		}

		versions, _ := AppliedVersions(ctx, db)
		migrations, _ := loadMigrations()
		if len(versions) != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), len(versions))
		}
	})

	t.Run("stripComments", func(t *testing.T) {
		got := stripComments("-- heading\nCREATE TABLE t (x INT) -- trailing\n\n")
		if got != "CREATE TABLE t (x INT)" {
			t.Errorf("unexpected result %q", got)
		}
	})
}
