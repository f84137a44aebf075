// Package repository defines error values that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios: ErrEmailExists maps
// to a 400 telling the operator the address is taken, ErrAlreadyDeleted
// signals a redundant soft delete, and ErrNoCategories tells post
// creation that the site has no active category to fall back to.
package repository

import "errors"

// ErrEmailExists is returned when creating or updating a user would reuse
// an email address that another non-deleted account already holds.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyDeleted is returned when soft-deleting a row that already
// carries a deleted_at timestamp.  Handlers translate this into a 400.
var ErrAlreadyDeleted = errors.New("already deleted")

// ErrNoCategories is returned by post creation when no category was
// supplied and no active category exists to fall back to.
var ErrNoCategories = errors.New("no active categories")
