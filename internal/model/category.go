package model

import "time"

// Category represents a row in the `categories` table.  Posts reference
// categories through the category_post join table; a post always belongs
// to at least one category, so post creation falls back to the first
// active category (by Order) when the client sends none.
//
// Fields:
//  ID        - primary key identifier of the category.
//  Title     - display title.
//  Slug      - URL slug.
//  Order     - position in navigation; lists are sorted by it ascending.
//  Home      - shown on the front page when true.
//  Content   - optional description.
//  Status    - active flag.
//  CreatedAt - timestamp of creation.
//  UpdatedAt - timestamp of last update.
//  DeletedAt - soft-delete timestamp.
type Category struct {
	ID        uint64     // categories.id
	Title     string     // categories.title
	Slug      string     // categories.slug
	Order     int        // categories.order
	Home      bool       // categories.home
	Content   *string    // categories.content (nullable)
	Status    bool       // categories.status
	CreatedAt time.Time  // categories.created_at
	UpdatedAt time.Time  // categories.updated_at
	DeletedAt *time.Time // categories.deleted_at (nullable)
}
