package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// userColumns is the projection shared by every user query.
const userColumns = "id, name, surname, email, password, role, status, created_at, updated_at, deleted_at"

// UserRepo provides data access to the users table.  All reads that feed
// authorization decisions go through here; the authz package re-reads the
// actor row on every sensitive mutation instead of trusting session
// claims.
type UserRepo struct {
	db   *sql.DB
	exec *database.Executor
}

// NewUserRepo returns a UserRepo bound to the database.
func NewUserRepo(db *sql.DB, exec *database.Executor) *UserRepo {
	return &UserRepo{db: db, exec: exec}
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var role int
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash,
		&role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	u.Role = model.ParseRank(role)
	return u, err
}

// GetForLogin fetches the account for credential verification: it only
// matches active, non-deleted accounts.  A miss is sql.ErrNoRows; the
// caller must collapse that and a bad password into one generic failure.
func (r *UserRepo) GetForLogin(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		var scanErr error
		u, scanErr = scanUser(r.db.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE email = ? AND status = 1 AND deleted_at IS NULL LIMIT 1",
			email))
		return scanErr
	})
	return u, err
}

// GetByID fetches a user by id without filtering on status or deletion.
// Callers that need "live account" semantics (the authorizer, the user
// detail endpoint) inspect Status and DeletedAt themselves.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		var scanErr error
		u, scanErr = scanUser(r.db.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
		return scanErr
	})
	return u, err
}

// UserFilter narrows List.  Query matches name, surname or email; Role
// filters on the exact rank.
type UserFilter struct {
	Query string
	Role  *model.Rank
}

// List returns non-deleted users, newest first, capped at 100.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL"
	args := []any{}
	if s := strings.TrimSpace(f.Query); s != "" {
		q += " AND (name LIKE ? OR surname LIKE ? OR email LIKE ?)"
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}
	if f.Role != nil {
		q += " AND role = ?"
		args = append(args, uint8(*f.Role))
	}
	q += " ORDER BY created_at DESC LIMIT 100"

	var users []model.User
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		users = users[:0]
		rows, err := r.db.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var u model.User
			var role int
			if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash,
				&role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
				return err
			}
			u.Role = model.ParseRank(role)
			users = append(users, u)
		}
		return rows.Err()
	})
	return users, err
}

// EmailTaken reports whether another non-deleted account (excluding
// excludeID, which may be zero) already uses the address.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE email = ? AND deleted_at IS NULL AND id <> ?",
			email, excludeID).Scan(&count)
	})
	return count > 0, err
}

// Create inserts a user and returns its id.  The password must already be
// hashed.  A duplicate email, whether caught by the pre-check race or the
// unique index, comes back as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	var id uint64
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO users (name, surname, email, password, role, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
			u.Name, u.Surname, strings.ToLower(strings.TrimSpace(u.Email)),
			u.PasswordHash, uint8(u.Role), u.Status)
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
	if database.IsDuplicateEntry(err) {
		return 0, ErrEmailExists
	}
	return id, err
}

// UserUpdate carries the optional fields of an update; nil means "leave
// unchanged".  PasswordHash is only written when non-nil, so updates
// without a new password never touch the stored hash.
type UserUpdate struct {
	Name         *string
	Surname      *string
	Email        *string
	PasswordHash *string
	Role         *model.Rank
	Status       *bool
}

// Update applies the non-nil fields to the user row.
func (r *UserRepo) Update(ctx context.Context, id uint64, up UserUpdate) error {
	sets := []string{"updated_at = UTC_TIMESTAMP()"}
	args := []any{}
	if up.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *up.Name)
	}
	if up.Surname != nil {
		sets = append(sets, "surname = ?")
		args = append(args, *up.Surname)
	}
	if up.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(*up.Email)))
	}
	if up.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *up.PasswordHash)
	}
	if up.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, uint8(*up.Role))
	}
	if up.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *up.Status)
	}
	args = append(args, id)

	err := r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		return err
	})
	if database.IsDuplicateEntry(err) {
		return ErrEmailExists
	}
	return err
}

// SoftDelete stamps deleted_at on the user.  Self-deletion is rejected in
// the authz layer before this is reached.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE users SET deleted_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL",
			id)
		return err
	})
}

// ToggleStatus flips the active flag.
func (r *UserRepo) ToggleStatus(ctx context.Context, id uint64) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE users SET status = NOT status, updated_at = UTC_TIMESTAMP() WHERE id = ?", id)
		return err
	})
}

// SetRole writes a new rank for the user.  The cycling order (reporter →
// editor → admin → reporter) is decided by the handler.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Rank) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE users SET role = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?", uint8(role), id)
		return err
	})
}
