package recipe_test

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Skryldev/recipebook/adapters/storage"
	"github.com/Skryldev/recipebook/codec"
	"github.com/Skryldev/recipebook/config"
	"github.com/Skryldev/recipebook/core"
	"github.com/Skryldev/recipebook/internal/testimage"
	"github.com/Skryldev/recipebook/recipe"
	"github.com/Skryldev/recipebook/store/sqlite"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     *sqlite.SQLiteDB
	repo   *recipe.SQLiteRepository
	svc    *recipe.Service
	photos *storage.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c, err := codec.New(config.Default())
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	photos, err := storage.NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	repo := recipe.NewSQLiteRepository(db.DB(), c)
	svc := recipe.NewService(repo, c, photos, recipe.WithClock(func() time.Time { return fixedNow }))
	return &fixture{db: db, repo: repo, svc: svc, photos: photos}
}

func size(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// ── Difficulty ────────────────────────────────────────────────────────────────

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    recipe.Difficulty
		wantErr bool
	}{
		{"", recipe.Easy, false},
		{"easy", recipe.Easy, false},
		{" MEDIUM ", recipe.Medium, false},
		{"Hard", recipe.Hard, false},
		{"impossible", "", true},
	}
	for _, tc := range tests {
		got, err := recipe.ParseDifficulty(tc.in)
		if tc.wantErr {
			if !errors.Is(err, recipe.ErrInvalidDifficulty) {
				t.Errorf("%q: got %v, want ErrInvalidDifficulty", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: got %q %v, want %q", tc.in, got, err, tc.want)
		}
	}
}

// ── Repository ────────────────────────────────────────────────────────────────

func TestRepository_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := &recipe.Recipe{
		Title:      "Pancakes",
		Author:     "Ana",
		Difficulty: recipe.Medium,
		DateAdded:  fixedNow.Add(-time.Hour),
		Image:      testimage.Gradient(800, 600),
	}
	id, err := f.repo.Create(ctx, rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected database-assigned id")
	}

	got, err := f.repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Pancakes" || got.Author != "Ana" || got.Difficulty != recipe.Medium {
		t.Errorf("fields: %+v", got)
	}
	if !got.DateAdded.Equal(rec.DateAdded) {
		t.Errorf("date: got %v, want %v", got.DateAdded, rec.DateAdded)
	}
	if w, h := size(got.Image); w != 800 || h != 600 {
		t.Errorf("image %dx%d, want 800x600", w, h)
	}
	if _, ok := got.Image.(*core.RGB565); !ok {
		t.Errorf("image type %T", got.Image)
	}

	got.Title = "Crêpes"
	got.Image = testimage.Gradient(3000, 1000)
	if err := f.repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := f.repo.Get(ctx, id)
	if updated.Title != "Crêpes" {
		t.Errorf("title: got %q", updated.Title)
	}
	if w, h := size(updated.Image); w != 1024 || h != 341 {
		t.Errorf("image %dx%d, want 1024x341", w, h)
	}

	if err := f.repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.repo.Get(ctx, id); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("Get after delete: got %v", err)
	}
}

func TestRepository_MissingRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.repo.Update(ctx, &recipe.Recipe{ID: 99, Title: "x"}); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("Update: got %v", err)
	}
	if err := f.repo.Delete(ctx, 99); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("Delete: got %v", err)
	}
	if _, err := f.repo.ImageBytes(ctx, 99); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("ImageBytes: got %v", err)
	}
}

func TestRepository_ListOrderedByTitleIgnoringCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"banana bread", "Apple pie", "cherry tart", "apricot jam"} {
		if _, err := f.repo.Create(ctx, &recipe.Recipe{Title: title, Difficulty: recipe.Easy, DateAdded: fixedNow}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := f.repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Apple pie", "apricot jam", "banana bread", "cherry tart"}
	if len(list) != len(want) {
		t.Fatalf("got %d recipes", len(list))
	}
	for i, w := range want {
		if list[i].Title != w {
			t.Errorf("position %d: got %q, want %q", i, list[i].Title, w)
		}
	}
}

func TestRepository_Upsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.repo.Upsert(ctx, &recipe.Recipe{ID: 42, Title: "Soup", Difficulty: recipe.Easy, DateAdded: fixedNow})
	if err != nil || id != 42 {
		t.Fatalf("insert: %d %v", id, err)
	}
	if _, err := f.repo.Upsert(ctx, &recipe.Recipe{ID: 42, Title: "Stew", Difficulty: recipe.Hard, DateAdded: fixedNow}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := f.repo.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Stew" || got.Difficulty != recipe.Hard {
		t.Errorf("got %+v", got)
	}

	newID, err := f.repo.Upsert(ctx, &recipe.Recipe{Title: "Salad", Difficulty: recipe.Easy, DateAdded: fixedNow})
	if err != nil || newID == 0 || newID == 42 {
		t.Errorf("zero id insert: %d %v", newID, err)
	}
}

func TestRepository_CorruptBlobBecomesPlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.db.DB().Exec(`INSERT INTO recipes (title, author, difficulty, date_added, image)
		VALUES ('Legacy', '', 'Easy', 0, ?)`, []byte("not an image"))
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()

	got, err := f.repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if w, h := size(got.Image); w != 32 || h != 32 {
		t.Errorf("placeholder %dx%d, want 32x32", w, h)
	}

	if _, err := f.db.DB().Exec(`UPDATE recipes SET image = NULL, difficulty = 'weird' WHERE id = ?`, id); err != nil {
		t.Fatal(err)
	}
	got, _ = f.repo.Get(ctx, id)
	if w, _ := size(got.Image); w != 32 || got.Difficulty != recipe.Easy {
		t.Errorf("null image: %dpx %s", w, got.Difficulty)
	}
}

// ── Service ───────────────────────────────────────────────────────────────────

func TestService_SaveCreatesWithDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, recipe.Draft{Title: "  banana bread ", Author: " Mia ", Difficulty: "hard"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == 0 || rec.Title != "banana bread" || rec.Author != "Mia" || rec.Difficulty != recipe.Hard {
		t.Errorf("saved %+v", rec)
	}
	if !rec.DateAdded.Equal(fixedNow) {
		t.Errorf("date: got %v, want now", rec.DateAdded)
	}

	stored, err := f.svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := size(stored.Image); w != 256 || h != 256 {
		t.Errorf("placeholder %dx%d, want 256x256", w, h)
	}
}

func TestService_SaveValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Save(ctx, recipe.Draft{Title: "x", DateAdded: fixedNow.Add(time.Minute)}); !errors.Is(err, recipe.ErrFutureDate) {
		t.Errorf("future date: got %v", err)
	}
	if _, err := f.svc.Save(ctx, recipe.Draft{Title: "x", Difficulty: "extreme"}); !errors.Is(err, recipe.ErrInvalidDifficulty) {
		t.Errorf("difficulty: got %v", err)
	}
	if _, err := f.svc.Save(ctx, recipe.Draft{ID: 7, Title: "x"}); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("update missing: got %v", err)
	}
	if rec, err := f.svc.Save(ctx, recipe.Draft{Title: "", DateAdded: fixedNow.Add(-48 * time.Hour)}); err != nil || rec.Title != "" {
		t.Errorf("empty title should be allowed: %v", err)
	}
}

func TestService_SaveUpdatesAndDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, recipe.Draft{Title: "Soup", Image: testimage.Gradient(100, 50)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Save(ctx, recipe.Draft{ID: rec.ID, Title: "Better soup", Difficulty: "Medium", DateAdded: rec.DateAdded}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := f.svc.Get(ctx, rec.ID)
	if got.Title != "Better soup" || got.Difficulty != recipe.Medium {
		t.Errorf("got %+v", got)
	}
	// Edit is a full replace: no image in the draft means the placeholder.
	if w, _ := size(got.Image); w != 256 {
		t.Errorf("image width %d, want placeholder", w)
	}

	if err := f.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := f.svc.List(ctx)
	if len(list) != 0 {
		t.Errorf("list after delete: %d", len(list))
	}
}

func TestService_AttachPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rotated := testimage.WithOrientation(testimage.JPEG(testimage.Gradient(90, 30)), int(core.OrientationRotate90))
	if err := os.WriteFile(filepath.Join(f.photos.Root(), "photo.jpg"), rotated, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.photos.Root(), "broken.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := f.svc.AttachPhoto(ctx, "photo.jpg", "Pie")
	if err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	if w, h := size(img); w != 30 || h != 90 {
		t.Errorf("oriented %dx%d, want 30x90", w, h)
	}

	img, err = f.svc.AttachPhoto(ctx, "broken.jpg", "Pie")
	if err != nil {
		t.Fatalf("AttachPhoto broken: %v", err)
	}
	if w, h := size(img); w != 256 || h != 256 {
		t.Errorf("placeholder %dx%d, want 256x256", w, h)
	}

	img, err = f.svc.AttachPhoto(ctx, "missing.jpg", "Pie")
	if err != nil {
		t.Fatalf("AttachPhoto missing: %v", err)
	}
	if w, h := size(img); w != 256 || h != 256 {
		t.Errorf("missing reference gave %dx%d, want 256x256 placeholder", w, h)
	}
}

type warnRecorder struct {
	core.NopLogger
	warns []string
}

func (l *warnRecorder) Warn(msg string, _ ...interface{}) { l.warns = append(l.warns, msg) }

func TestService_AttachPhotoUnreadableReference(t *testing.T) {
	db, err := sqlite.Open(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	c, err := codec.New(config.Default())
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	root := t.TempDir()
	photos, err := storage.NewLocal(root, 0, storage.WithMaxBytes(16))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "big.jpg"), testimage.JPEG(testimage.Gradient(64, 64)), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := &warnRecorder{}
	svc := recipe.NewService(recipe.NewSQLiteRepository(db.DB(), c), c, photos, recipe.WithLogger(logger))

	for _, ref := range []string{"missing.jpg", "file:///no/such/photo.jpg", "big.jpg", "  "} {
		img, err := svc.AttachPhoto(context.Background(), ref, "  pie")
		if err != nil {
			t.Fatalf("%q: %v", ref, err)
		}
		if w, h := size(img); w != 256 || h != 256 {
			t.Errorf("%q: got %dx%d, want 256x256", ref, w, h)
		}
	}
	if len(logger.warns) != 4 {
		t.Errorf("warnings: got %v, want 4", logger.warns)
	}
}

func TestService_AttachPhotoWithoutSource(t *testing.T) {
	c, err := codec.New(config.Default())
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	svc := recipe.NewService(nil, c, nil)
	if _, err := svc.AttachPhoto(context.Background(), "x.jpg", "Pie"); err == nil {
		t.Fatal("expected error without a photo source")
	}
}
