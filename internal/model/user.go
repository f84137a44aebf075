package model

import "time"

// User represents a row in the `users` table.  Accounts are never removed
// physically; DeletedAt marks a soft delete and all lookups filter on it.
// Status is the active flag: a deactivated account cannot log in and fails
// every authorization check even while its session token is still alive.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Name         - given name.
//  Surname      - family name (optional).
//  Email        - unique email address among non-deleted accounts.
//  PasswordHash - bcrypt hashed password; empty when no password is set.
//  Role         - ordered rank (reporter < editor < admin).
//  Status       - whether the account is active.
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
//  DeletedAt    - soft-delete timestamp (nil while the account lives).
type User struct {
	ID           uint64     // users.id
	Name         string     // users.name
	Surname      string     // users.surname
	Email        string     // users.email
	PasswordHash string     // users.password
	Role         Rank       // users.role
	Status       bool       // users.status
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
	DeletedAt    *time.Time // users.deleted_at (nullable)
}

// DisplayName joins name and surname the way the admin panel shows
// authors; it falls back to the email when both are empty.
func (u User) DisplayName() string {
	full := u.Name
	if u.Surname != "" {
		if full != "" {
			full += " "
		}
		full += u.Surname
	}
	if full == "" {
		return u.Email
	}
	return full
}
