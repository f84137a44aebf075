package repository

import (
	"context"
	"database/sql"

	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// AdRepo provides data access to the advertising table.
type AdRepo struct {
	db   *sql.DB
	exec *database.Executor
}

// NewAdRepo returns an AdRepo bound to the database.
func NewAdRepo(db *sql.DB, exec *database.Executor) *AdRepo {
	return &AdRepo{db: db, exec: exec}
}

// List returns non-deleted campaigns, newest first, capped at 50.
func (r *AdRepo) List(ctx context.Context) ([]model.Ad, error) {
	var ads []model.Ad
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		ads = ads[:0]
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, title, link, image_url, status, ends_at, created_at, updated_at, deleted_at
			   FROM advertising WHERE deleted_at IS NULL
			  ORDER BY created_at DESC LIMIT 50`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a model.Ad
			if err := rows.Scan(&a.ID, &a.Title, &a.Link, &a.ImageURL, &a.Status,
				&a.EndsAt, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt); err != nil {
				return err
			}
			ads = append(ads, a)
		}
		return rows.Err()
	})
	return ads, err
}

// Create inserts a campaign and returns its id.
func (r *AdRepo) Create(ctx context.Context, a model.Ad) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO advertising (title, link, image_url, status, ends_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
			a.Title, a.Link, a.ImageURL, a.Status, a.EndsAt)
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

// Update rewrites the campaign's editable fields.
func (r *AdRepo) Update(ctx context.Context, id uint64, a model.Ad) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			`UPDATE advertising SET title = ?, link = ?, image_url = ?, status = ?, ends_at = ?, updated_at = UTC_TIMESTAMP()
			  WHERE id = ?`,
			a.Title, a.Link, a.ImageURL, a.Status, a.EndsAt, id)
		return err
	})
}

// SoftDelete stamps deleted_at on the campaign.
func (r *AdRepo) SoftDelete(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE advertising SET deleted_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL", id)
		return err
	})
}
