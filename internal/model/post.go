package model

import "time"

// Post represents a row in the `posts` table.  Publish is stored as a
// tinyint in the schema (0 draft, 1 live) and is kept as an int here so
// repositories do not have to translate on every scan.  DeletedBy records
// which user soft-deleted the post; the column was added by a later
// migration and may be absent on older databases, which the post
// repository tolerates by re-issuing its listing query without it.
//
// Fields:
//  ID            - primary key identifier of the post.
//  Title         - headline; required.
//  Slug          - URL slug, generated from the title when not supplied.
//  SubTitle      - optional standfirst.
//  Keywords      - SEO keywords (also mirrored into seo_keyword).
//  Content       - sanitized HTML body.
//  ImageURL      - cover image location.
//  VideoEmbed    - embedded video link.
//  Publish       - 0 draft, 1 live.
//  Status        - active flag.
//  Hidden        - excluded from public listings when true.
//  ViewCount     - denormalized public view counter.
//  AuthorID      - users.id of the account that opened the post.
//  PublishedDate - moment the post went (or will go) live.
//  CreatedAt     - timestamp of creation.
//  UpdatedAt     - timestamp of last update.
//  DeletedAt     - soft-delete timestamp.
//  DeletedBy     - users.id that performed the soft delete (nullable,
//                  also nil when the live schema lacks the column).
type Post struct {
	ID            uint64     // posts.id
	Title         string     // posts.title
	Slug          string     // posts.slug
	SubTitle      *string    // posts.sub_title (nullable)
	Keywords      *string    // posts.keywords (nullable)
	Content       string     // posts.content
	ImageURL      *string    // posts.image_url (nullable)
	VideoEmbed    *string    // posts.youtube_link (nullable)
	Publish       int        // posts.publish (0 draft, 1 live)
	Status        bool       // posts.status
	Hidden        bool       // posts.hidden
	ViewCount     uint64     // posts.view_count
	AuthorID      *uint64    // posts.opened_user_id (nullable)
	PublishedDate *time.Time // posts.published_date (nullable)
	CreatedAt     time.Time  // posts.created_at
	UpdatedAt     time.Time  // posts.updated_at
	DeletedAt     *time.Time // posts.deleted_at (nullable)
	DeletedBy     *uint64    // posts.deleted_by (nullable, may be missing)
}
