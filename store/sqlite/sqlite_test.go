package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Skryldev/recipebook/store"
)

func TestConnect_RunsMigrations(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var version int
	if err := db.DB().QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != SchemaVersion() {
		t.Errorf("version: got %d, want %d", version, SchemaVersion())
	}
	if _, err := db.DB().Exec(`INSERT INTO recipes (title, author, difficulty, date_added) VALUES ('a', 'b', 'Easy', 0)`); err != nil {
		t.Errorf("recipes table missing: %v", err)
	}
}

func TestConnect_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		var n int
		if err := db.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != len(migrations) {
			t.Errorf("open %d: %d migrations recorded, want %d", i, n, len(migrations))
		}
		db.Close()
	}
}

func TestConnect_Twice(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Connect(); err == nil {
		t.Error("second Connect should fail")
	}
}

func TestRunInTransaction(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	insert := `INSERT INTO recipes (title, author, difficulty, date_added) VALUES (?, '', 'Easy', 0)`

	boom := errors.New("boom")
	err = store.RunInTransaction(ctx, db.DB(), func(txCtx context.Context) error {
		if _, err := store.GetExecutor(txCtx, db.DB()).ExecContext(txCtx, insert, "rolled back"); err != nil {
			return err
		}
		// Nested calls join the outer transaction.
		return store.RunInTransaction(txCtx, db.DB(), func(context.Context) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	err = store.RunInTransaction(ctx, db.DB(), func(txCtx context.Context) error {
		_, err := store.GetExecutor(txCtx, db.DB()).ExecContext(txCtx, insert, "kept")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.DB().QueryRow("SELECT COUNT(*) FROM recipes").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows: got %d, want 1", n)
	}
}
