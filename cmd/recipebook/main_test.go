package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Skryldev/recipebook/internal/testimage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{}
	root := a.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	if cerr := a.close(); cerr != nil {
		t.Errorf("close: %v", cerr)
	}
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("RECIPEBOOK_DATABASE_PATH", filepath.Join(dir, "book.db"))
	t.Setenv("RECIPEBOOK_PHOTO_DIR", dir)
	t.Setenv("RECIPEBOOK_LOG_LEVEL", "error")
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "recipebook codec v3\n" {
		t.Errorf("version output %q", out)
	}
}

func TestAddEditListExport(t *testing.T) {
	dir := setup(t)
	if err := os.WriteFile(filepath.Join(dir, "tart.jpg"), testimage.JPEG(testimage.Gradient(200, 100)), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "add", "--title", "Tart", "--author", "Mo", "--date", "2025-06-01", "--photo", "tart.jpg")
	if err != nil {
		t.Fatalf("add: %v (%s)", err, out)
	}
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("add printed %q, want id 1", out)
	}

	if out, err := run(t, "edit", "1", "--difficulty", "hard"); err != nil {
		t.Fatalf("edit: %v (%s)", err, out)
	}

	out, err = run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Tart", "Mo", "Hard", "2025-06-01", "200x100"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	exportDir := filepath.Join(dir, "out")
	out, err = run(t, "export", "1", "--out", exportDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(strings.TrimSpace(out)); err != nil {
		t.Errorf("exported file: %v", err)
	}
}

func TestPhotoAndDelete(t *testing.T) {
	dir := setup(t)
	if _, err := run(t, "add", "--title", "Flan"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flan.png"), testimage.PNG(testimage.Gradient(50, 70)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "photo", "1", "flan.png"); err != nil {
		t.Fatalf("photo: %v", err)
	}
	out, err := run(t, "list")
	if err != nil || !strings.Contains(out, "50x70") {
		t.Fatalf("list after photo: %v\n%s", err, out)
	}

	if _, err := run(t, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, "delete", "1"); err == nil {
		t.Error("second delete should fail")
	}
}

func TestRejectsBadInput(t *testing.T) {
	setup(t)
	cases := [][]string{
		{"edit", "abc"},
		{"add", "--title", "x", "--difficulty", "extreme"},
		{"add", "--title", "x", "--date", "June"},
		{"list", "--log-level", "loud"},
		{"list", "--log-format", "xml"},
	}
	for _, args := range cases {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestAddWithMissingPhotoUsesPlaceholder(t *testing.T) {
	setup(t)
	if out, err := run(t, "add", "--title", "Pie", "--photo", "missing.jpg"); err != nil {
		t.Fatalf("add: %v (%s)", err, out)
	}
	if _, err := run(t, "photo", "1", "gone.png"); err != nil {
		t.Fatalf("photo: %v", err)
	}
	out, err := run(t, "list")
	if err != nil || !strings.Contains(out, "256x256") {
		t.Fatalf("list: %v\n%s", err, out)
	}
}

func TestZapLogFormat(t *testing.T) {
	setup(t)
	t.Setenv("RECIPEBOOK_LOG_FORMAT", "zap")
	out, err := run(t, "--log-level", "info", "add", "--title", "Soup")
	if err != nil {
		t.Fatalf("add: %v (%s)", err, out)
	}
	if !strings.Contains(out, `"msg":"recipe.created"`) {
		t.Errorf("expected a zap JSON line, got:\n%s", out)
	}
}
