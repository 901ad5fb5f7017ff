package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Skryldev/recipebook/placeholder"
	"github.com/Skryldev/recipebook/store"
)

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository implements Repository on the recipes table. Images are
// encoded before every write and decoded when a row is scanned.
type SQLiteRepository struct {
	db    *sql.DB
	codec ImageCodec
}

// NewSQLiteRepository creates a repository over an open database.
func NewSQLiteRepository(sqlDB *sql.DB, codec ImageCodec) *SQLiteRepository {
	return &SQLiteRepository{db: sqlDB, codec: codec}
}

const listQuery = `
	SELECT id, title, author, difficulty, date_added, image
	FROM recipes
	ORDER BY title COLLATE NOCASE ASC, id ASC
`

// List returns every recipe ordered by title, ignoring case.
func (r *SQLiteRepository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := store.GetExecutor(ctx, r.db).QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var row recipeRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, *row.toDomain(ctx, r.codec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return out, nil
}

const getQuery = `
	SELECT id, title, author, difficulty, date_added, image
	FROM recipes
	WHERE id = ?
`

// Get returns one recipe or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Recipe, error) {
	var row recipeRow
	err := row.scan(store.GetExecutor(ctx, r.db).QueryRowContext(ctx, getQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return row.toDomain(ctx, r.codec), nil
}

const imageQuery = `SELECT image FROM recipes WHERE id = ?`

func (r *SQLiteRepository) ImageBytes(ctx context.Context, id int64) ([]byte, error) {
	var blob []byte
	err := store.GetExecutor(ctx, r.db).QueryRowContext(ctx, imageQuery, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image of recipe %d: %w", id, err)
	}
	return blob, nil
}

const insertQuery = `
	INSERT INTO recipes (title, author, difficulty, date_added, image)
	VALUES (?, ?, ?, ?, ?)
`

// Create inserts rec and returns the assigned id. rec.ID is ignored.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Recipe) (int64, error) {
	blob, err := r.encode(ctx, rec)
	if err != nil {
		return 0, err
	}
	res, err := store.GetExecutor(ctx, r.db).ExecContext(ctx, insertQuery,
		rec.Title, rec.Author, string(rec.Difficulty), rec.DateAdded.UnixMilli(), blob)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

const updateQuery = `
	UPDATE recipes
	SET title = ?, author = ?, difficulty = ?, date_added = ?, image = ?
	WHERE id = ?
`

// Update replaces every column of the row with rec.ID.
func (r *SQLiteRepository) Update(ctx context.Context, rec *Recipe) error {
	blob, err := r.encode(ctx, rec)
	if err != nil {
		return err
	}
	res, err := store.GetExecutor(ctx, r.db).ExecContext(ctx, updateQuery,
		rec.Title, rec.Author, string(rec.Difficulty), rec.DateAdded.UnixMilli(), blob, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update recipe %d: %w", rec.ID, err)
	}
	return expectOneRow(res, rec.ID)
}

const upsertQuery = `
	INSERT INTO recipes (id, title, author, difficulty, date_added, image)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		author = excluded.author,
		difficulty = excluded.difficulty,
		date_added = excluded.date_added,
		image = excluded.image
`

// Upsert inserts rec, or replaces the existing row with the same id. A zero
// id always inserts.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec *Recipe) (int64, error) {
	if rec.ID == 0 {
		return r.Create(ctx, rec)
	}
	blob, err := r.encode(ctx, rec)
	if err != nil {
		return 0, err
	}
	_, err = store.GetExecutor(ctx, r.db).ExecContext(ctx, upsertQuery,
		rec.ID, rec.Title, rec.Author, string(rec.Difficulty), rec.DateAdded.UnixMilli(), blob)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert recipe %d: %w", rec.ID, err)
	}
	return rec.ID, nil
}

const deleteQuery = `DELETE FROM recipes WHERE id = ?`

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := store.GetExecutor(ctx, r.db).ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (r *SQLiteRepository) encode(ctx context.Context, rec *Recipe) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("recipe cannot be nil")
	}
	if rec.Image == nil {
		return nil, nil
	}
	blob, err := r.codec.Encode(ctx, rec.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return blob, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// recipeRow is a private struct used to scan database rows
type recipeRow struct {
	ID         int64
	Title      string
	Author     string
	Difficulty string
	DateAdded  int64
	Image      []byte
}

type scanner interface {
	Scan(dest ...any) error
}

func (rr *recipeRow) scan(s scanner) error {
	return s.Scan(&rr.ID, &rr.Title, &rr.Author, &rr.Difficulty, &rr.DateAdded, &rr.Image)
}

// toDomain decodes the stored image. A missing blob becomes the plain
// placeholder; one that fails to decode is substituted by the codec.
func (rr *recipeRow) toDomain(ctx context.Context, codec ImageCodec) *Recipe {
	d, err := ParseDifficulty(rr.Difficulty)
	if err != nil {
		d = Easy
	}
	rec := &Recipe{
		ID:         rr.ID,
		Title:      rr.Title,
		Author:     rr.Author,
		Difficulty: d,
		DateAdded:  time.UnixMilli(rr.DateAdded),
	}
	if len(rr.Image) == 0 {
		rec.Image = placeholder.Fallback()
	} else {
		rec.Image = codec.DecodeOrPlaceholder(ctx, rr.Image)
	}
	return rec
}
