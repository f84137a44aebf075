package repository

import (
	"context"
	"database/sql"

	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// CategoryRepo provides data access to the categories table.
type CategoryRepo struct {
	db   *sql.DB
	exec *database.Executor
}

// NewCategoryRepo returns a CategoryRepo bound to the database.
func NewCategoryRepo(db *sql.DB, exec *database.Executor) *CategoryRepo {
	return &CategoryRepo{db: db, exec: exec}
}

// List returns active, non-deleted categories in navigation order.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		cats = cats[:0]
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, title, slug, `+"`order`"+`, home, content, status, created_at, updated_at, deleted_at
			   FROM categories WHERE deleted_at IS NULL AND status = 1
			  ORDER BY `+"`order`"+` ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c model.Category
			if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Order, &c.Home, &c.Content,
				&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
				return err
			}
			cats = append(cats, c)
		}
		return rows.Err()
	})
	return cats, err
}

// FirstActive returns the id of the first active category by order; post
// creation uses it as the fallback when the client sends no category.
func (r *CategoryRepo) FirstActive(ctx context.Context) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx,
			"SELECT id FROM categories WHERE deleted_at IS NULL AND status = 1 ORDER BY `order` ASC LIMIT 1").
			Scan(&id)
	})
	if err == sql.ErrNoRows {
		return 0, ErrNoCategories
	}
	return id, err
}

// Create inserts a category and returns its id.
func (r *CategoryRepo) Create(ctx context.Context, c model.Category) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO categories (title, slug, `order`, home, content, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 1, UTC_TIMESTAMP(), UTC_TIMESTAMP())",
			c.Title, c.Slug, c.Order, c.Home, c.Content)
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

// Update rewrites the category's editable fields.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, c model.Category) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE categories SET title = ?, slug = ?, `order` = ?, home = ?, content = ?, status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?",
			c.Title, c.Slug, c.Order, c.Home, c.Content, c.Status, id)
		return err
	})
}

// SoftDelete stamps deleted_at on the category.
func (r *CategoryRepo) SoftDelete(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE categories SET deleted_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL", id)
		return err
	})
}
