package repository

import (
	"context"
	"database/sql"

	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// WikiRepo provides data access to the wiki_posts table.
type WikiRepo struct {
	db   *sql.DB
	exec *database.Executor
}

// NewWikiRepo returns a WikiRepo bound to the database.
func NewWikiRepo(db *sql.DB, exec *database.Executor) *WikiRepo {
	return &WikiRepo{db: db, exec: exec}
}

// List returns non-deleted entries, newest first, capped at 50.  The
// projection skips Content; the listing screen never shows it.
func (r *WikiRepo) List(ctx context.Context) ([]model.WikiPost, error) {
	var entries []model.WikiPost
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		entries = entries[:0]
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, title, status, created_at FROM wiki_posts
			  WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT 50`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var w model.WikiPost
			if err := rows.Scan(&w.ID, &w.Title, &w.Status, &w.CreatedAt); err != nil {
				return err
			}
			entries = append(entries, w)
		}
		return rows.Err()
	})
	return entries, err
}

// GetByID fetches the full entry.
func (r *WikiRepo) GetByID(ctx context.Context, id uint64) (model.WikiPost, error) {
	var w model.WikiPost
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, title, slug, content, status, created_at, updated_at, deleted_at
			   FROM wiki_posts WHERE id = ? LIMIT 1`, id).
			Scan(&w.ID, &w.Title, &w.Slug, &w.Content, &w.Status,
				&w.CreatedAt, &w.UpdatedAt, &w.DeletedAt)
	})
	return w, err
}

// Create inserts an entry and returns its id.
func (r *WikiRepo) Create(ctx context.Context, w model.WikiPost) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO wiki_posts (title, slug, content, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
			w.Title, w.Slug, w.Content, w.Status)
		if err != nil {
			return err
		}
		last, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(last)
		return nil
	})
	return id, err
}

// Update rewrites the entry's editable fields.
func (r *WikiRepo) Update(ctx context.Context, id uint64, w model.WikiPost) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			`UPDATE wiki_posts SET title = ?, slug = ?, content = ?, status = ?, updated_at = UTC_TIMESTAMP()
			  WHERE id = ?`,
			w.Title, w.Slug, w.Content, w.Status, id)
		return err
	})
}

// SoftDelete stamps deleted_at on the entry.
func (r *WikiRepo) SoftDelete(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE wiki_posts SET deleted_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL", id)
		return err
	})
}
