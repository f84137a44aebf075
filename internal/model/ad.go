package model

import "time"

// Ad represents a row in the `advertising` table.  Campaigns are tracked
// with a status flag and an end date; expired or disabled campaigns stay
// in the table for reporting and are soft-deleted when retired.
//
// Fields:
//  ID        - primary key identifier of the campaign.
//  Title     - campaign name shown in the panel.
//  Link      - click-through target URL.
//  ImageURL  - creative location.
//  Status    - whether the campaign is currently served.
//  EndsAt    - campaign end date (nil for open-ended campaigns).
//  CreatedAt - timestamp of creation.
//  UpdatedAt - timestamp of last update.
//  DeletedAt - soft-delete timestamp.
type Ad struct {
	ID        uint64     // advertising.id
	Title     string     // advertising.title
	Link      *string    // advertising.link (nullable)
	ImageURL  *string    // advertising.image_url (nullable)
	Status    bool       // advertising.status
	EndsAt    *time.Time // advertising.ends_at (nullable)
	CreatedAt time.Time  // advertising.created_at
	UpdatedAt time.Time  // advertising.updated_at
	DeletedAt *time.Time // advertising.deleted_at (nullable)
}
