// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// ContentPurgeEvent is published on every visibility change of a post
// (publish, unpublish, soft delete, restore) so downstream systems (CDN
// invalidation, the public-site cache, search indexing) can refresh or
// drop the content without polling the primary database.
type ContentPurgeEvent struct {
	EventID    string `json:"event_id"` // unique id for idempotent consumers
	PostID     uint64 `json:"post_id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Action     string `json:"action"` // "published" | "unpublished" | "deleted" | "restored"
	ActorID    uint64 `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	OccurredAt string `json:"occurred_at"` // RFC 3339 UTC
}
