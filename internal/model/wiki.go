package model

import "time"

// WikiPost represents a row in the `wiki_posts` table.  The wiki is the
// site's encyclopedia section; entries share the sanitizing and
// soft-delete behavior of regular posts but carry no publish workflow.
//
// Fields:
//  ID        - primary key identifier of the entry.
//  Title     - entry title.
//  Slug      - URL slug.
//  Content   - sanitized HTML body.
//  Status    - active flag.
//  CreatedAt - timestamp of creation.
//  UpdatedAt - timestamp of last update.
//  DeletedAt - soft-delete timestamp.
type WikiPost struct {
	ID        uint64     // wiki_posts.id
	Title     string     // wiki_posts.title
	Slug      string     // wiki_posts.slug
	Content   string     // wiki_posts.content
	Status    bool       // wiki_posts.status
	CreatedAt time.Time  // wiki_posts.created_at
	UpdatedAt time.Time  // wiki_posts.updated_at
	DeletedAt *time.Time // wiki_posts.deleted_at (nullable)
}
