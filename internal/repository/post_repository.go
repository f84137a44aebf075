package repository

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// PostRepo provides data access to the posts table and its category_post
// join rows.  Two defensive paths live here, both triggered by typed
// MySQL error classification rather than message matching:
//
//   - listing selects the deleted_by column, which older databases lack;
//     on an unknown-column error the query is re-issued without it and
//     the field surfaces as nil (deploy/migration skew, logged as a
//     warning, never shown to the user);
//   - updates can trip the posts_chk_1 CHECK constraint on some optional
//     columns; on that error the update is retried with the minimal
//     column set and the optional columns are applied in a second,
//     best-effort statement.
type PostRepo struct {
	db   *sql.DB
	exec *database.Executor
}

// NewPostRepo returns a PostRepo bound to the database.
func NewPostRepo(db *sql.DB, exec *database.Executor) *PostRepo {
	return &PostRepo{db: db, exec: exec}
}

// PostFilter narrows List.  Limit is clamped to 1..100 with a default of
// 50.  IncludeDeleted must only be set for admin actors; the handler
// enforces that.
type PostFilter struct {
	Query          string
	Publish        string // "", "draft" or "live"
	CategoryID     uint64
	AuthorID       uint64
	Limit          int
	IncludeDeleted bool
}

// PostListItem is the listing projection: post columns plus the joined
// author display name.
type PostListItem struct {
	model.Post
	AuthorName *string
}

func (f PostFilter) limit() int {
	if f.Limit <= 0 {
		return 50
	}
	if f.Limit > 100 {
		return 100
	}
	return f.Limit
}

// buildListQuery assembles the listing SQL.  withDeletedBy toggles the
// schema-drift projection.
func (f PostFilter) buildListQuery(withDeletedBy bool) (string, []any) {
	deletedBy := "p.deleted_by"
	if !withDeletedBy {
		deletedBy = "NULL"
	}
	q := `SELECT p.id, p.title, p.slug, p.publish, p.status, p.hidden, p.view_count,
	   p.opened_user_id, p.published_date, p.created_at, p.deleted_at, ` + deletedBy + `,
	   TRIM(CONCAT(COALESCE(u.name, ''), ' ', COALESCE(u.surname, '')))
  FROM posts p
  LEFT JOIN users u ON u.id = p.opened_user_id
 WHERE 1 = 1`
	args := []any{}
	if !f.IncludeDeleted {
		q += " AND p.deleted_at IS NULL"
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q += " AND (p.title LIKE ? OR p.sub_title LIKE ?)"
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	switch f.Publish {
	case "draft":
		q += " AND p.publish = 0"
	case "live":
		q += " AND p.publish = 1"
	}
	if f.CategoryID != 0 {
		q += " AND p.id IN (SELECT post_id FROM category_post WHERE category_id = ?)"
		args = append(args, f.CategoryID)
	}
	if f.AuthorID != 0 {
		q += " AND p.opened_user_id = ?"
		args = append(args, f.AuthorID)
	}
	q += " ORDER BY p.published_date IS NULL, p.published_date DESC, p.created_at DESC LIMIT ?"
	args = append(args, f.limit())
	return q, args
}

// List returns posts for the panel's listing screen.  The whole fetch is
// retried once on connection loss; an unknown deleted_by column triggers
// the narrower projection.
func (r *PostRepo) List(ctx context.Context, f PostFilter) ([]PostListItem, error) {
	var items []PostListItem
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		var err error
		items, err = r.list(ctx, f, true)
		if database.IsUnknownColumn(err) {
			log.Printf("posts: deleted_by column missing, falling back to narrow projection (migration lag)")
			items, err = r.list(ctx, f, false)
		}
		return err
	})
	return items, err
}

func (r *PostRepo) list(ctx context.Context, f PostFilter, withDeletedBy bool) ([]PostListItem, error) {
	q, args := f.buildListQuery(withDeletedBy)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PostListItem{}
	for rows.Next() {
		var it PostListItem
		var author sql.NullString
		if err := rows.Scan(&it.ID, &it.Title, &it.Slug, &it.Publish, &it.Status, &it.Hidden,
			&it.ViewCount, &it.AuthorID, &it.PublishedDate, &it.CreatedAt,
			&it.DeletedAt, &it.DeletedBy, &author); err != nil {
			return nil, err
		}
		if author.Valid && strings.TrimSpace(author.String) != "" {
			name := strings.TrimSpace(author.String)
			it.AuthorName = &name
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID fetches the full post row.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, title, slug, sub_title, keywords, content, image_url, youtube_link,
					publish, status, hidden, view_count, opened_user_id, published_date,
					created_at, updated_at, deleted_at
			   FROM posts WHERE id = ? LIMIT 1`, id).
			Scan(&p.ID, &p.Title, &p.Slug, &p.SubTitle, &p.Keywords, &p.Content,
				&p.ImageURL, &p.VideoEmbed, &p.Publish, &p.Status, &p.Hidden,
				&p.ViewCount, &p.AuthorID, &p.PublishedDate,
				&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	})
	return p, err
}

// Categories returns the post's category ids.
func (r *PostRepo) Categories(ctx context.Context, postID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		ids = ids[:0]
		rows, err := r.db.QueryContext(ctx,
			"SELECT category_id FROM category_post WHERE post_id = ?", postID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id uint64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

// Create inserts the post and its category links, returning the new id.
func (r *PostRepo) Create(ctx context.Context, p model.Post, categoryIDs []uint64) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO posts (title, slug, sub_title, keywords, seo_keyword, content, image_url,
								youtube_link, publish, status, hidden, opened_user_id, published_date,
								created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
			p.Title, p.Slug, p.SubTitle, p.Keywords, p.Keywords, p.Content, p.ImageURL,
			p.VideoEmbed, p.Publish, p.Status, p.Hidden, p.AuthorID, p.PublishedDate)
		if err != nil {
			return err
		}
		last, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(last)
		return r.replaceCategories(ctx, id, categoryIDs)
	})
	return id, err
}

// PostUpdate carries an update's fields.  Title, Content, Status, Publish,
// Hidden and Slug form the minimal set that must always apply; the rest
// are optional and survive being dropped by the constraint fallback.
type PostUpdate struct {
	Title         string
	Slug          string
	Content       string
	Status        bool
	Publish       int
	Hidden        bool
	PublishedDate *time.Time

	SubTitle   *string
	Keywords   *string
	ImageURL   *string
	VideoEmbed *string
}

// Update writes the post.  On a CHECK constraint violation the minimal
// column set is retried and the optional columns are applied separately;
// a second constraint failure on the optional statement is logged and
// ignored so the save never dead-ends the editor.
func (r *PostRepo) Update(ctx context.Context, id uint64, up PostUpdate) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		err := r.updateFull(ctx, id, up)
		if !database.IsCheckConstraint(err) {
			return err
		}
		log.Printf("posts: check constraint on full update of post %d, retrying with minimal columns", id)
		if err := r.updateMinimal(ctx, id, up); err != nil {
			return err
		}
		if err := r.updateOptional(ctx, id, up); err != nil {
			log.Printf("posts: optional column update for post %d failed, ignoring: %v", id, err)
		}
		return nil
	})
}

func (r *PostRepo) updateFull(ctx context.Context, id uint64, up PostUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts
			SET title = ?, slug = ?, content = ?, status = ?, publish = ?, hidden = ?,
				sub_title = ?, keywords = ?, seo_keyword = ?, image_url = ?, youtube_link = ?,
				published_date = COALESCE(?, published_date), updated_at = UTC_TIMESTAMP()
		  WHERE id = ?`,
		up.Title, up.Slug, up.Content, up.Status, up.Publish, up.Hidden,
		up.SubTitle, up.Keywords, up.Keywords, up.ImageURL, up.VideoEmbed,
		up.PublishedDate, id)
	return err
}

func (r *PostRepo) updateMinimal(ctx context.Context, id uint64, up PostUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts
			SET title = ?, slug = ?, content = ?, status = ?, publish = ?, hidden = ?,
				published_date = COALESCE(?, published_date), updated_at = UTC_TIMESTAMP()
		  WHERE id = ?`,
		up.Title, up.Slug, up.Content, up.Status, up.Publish, up.Hidden,
		up.PublishedDate, id)
	return err
}

func (r *PostRepo) updateOptional(ctx context.Context, id uint64, up PostUpdate) error {
	sets := []string{}
	args := []any{}
	if up.SubTitle != nil {
		sets = append(sets, "sub_title = ?")
		args = append(args, *up.SubTitle)
	}
	if up.Keywords != nil {
		sets = append(sets, "keywords = ?", "seo_keyword = ?")
		args = append(args, *up.Keywords, *up.Keywords)
	}
	if up.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *up.ImageURL)
	}
	if up.VideoEmbed != nil {
		sets = append(sets, "youtube_link = ?")
		args = append(args, *up.VideoEmbed)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// ReplaceCategories rewrites the post's category links.
func (r *PostRepo) ReplaceCategories(ctx context.Context, postID uint64, categoryIDs []uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.replaceCategories(ctx, postID, categoryIDs)
	})
}

func (r *PostRepo) replaceCategories(ctx context.Context, postID uint64, categoryIDs []uint64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM category_post WHERE post_id = ?", postID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO category_post (post_id, category_id, created_at) VALUES (?, ?, UTC_TIMESTAMP())",
			postID, cid); err != nil {
			return err
		}
	}
	return nil
}

// SoftDelete stamps deleted_at and records the acting user in deleted_by.
// When the live schema lacks deleted_by the statement is retried without
// it, mirroring the listing fallback.
func (r *PostRepo) SoftDelete(ctx context.Context, id, byUserID uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			`UPDATE posts SET deleted_at = UTC_TIMESTAMP(), deleted_by = ?, updated_at = UTC_TIMESTAMP()
			  WHERE id = ?`, byUserID, id)
		if database.IsUnknownColumn(err) {
			log.Printf("posts: deleted_by column missing on delete, falling back (migration lag)")
			_, err = r.db.ExecContext(ctx,
				"UPDATE posts SET deleted_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ?", id)
		}
		return err
	})
}

// Restore clears the soft-delete markers.
func (r *PostRepo) Restore(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE posts SET deleted_at = NULL, deleted_by = NULL, updated_at = UTC_TIMESTAMP() WHERE id = ?", id)
		if database.IsUnknownColumn(err) {
			_, err = r.db.ExecContext(ctx,
				"UPDATE posts SET deleted_at = NULL, updated_at = UTC_TIMESTAMP() WHERE id = ?", id)
		}
		return err
	})
}

// SetPublish flips the live flag.  Publishing stamps published_date when
// the post never had one so it sorts into the feed correctly.
func (r *PostRepo) SetPublish(ctx context.Context, id uint64, publish int) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			`UPDATE posts
				SET publish = ?,
					published_date = CASE WHEN ? = 1 AND published_date IS NULL THEN UTC_TIMESTAMP() ELSE published_date END,
					updated_at = UTC_TIMESTAMP()
			  WHERE id = ?`, publish, publish, id)
		return err
	})
}
