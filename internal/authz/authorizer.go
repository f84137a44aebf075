// Package authz performs the resource-level authorization checks that
// run inside mutation handlers, behind the coarse route guard.
//
// The session token caches the actor's rank at login time, and sessions
// are long-lived, so the cached claim can be stale: an admin demoted an
// hour ago still carries an admin token.  Every check here therefore
// re-reads the actor row from the database and decides on the current
// rank, active flag and deletion flag, never on the token.
package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustamli/newsdesk-admin/internal/model"
)

// UserStore is the slice of the user repository the authorizer needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ErrActorNotFound is returned when the acting account is missing,
// deactivated or soft-deleted.  All three collapse into one value so a
// denial never confirms whether an account exists.
var ErrActorNotFound = errors.New("actor not found")

// ErrSelfAction is returned when an actor targets their own account with
// an operation that is forbidden on oneself, regardless of rank.
var ErrSelfAction = errors.New("operation not allowed on own account")

// RankError is returned when the actor exists and is active but holds a
// rank below the operation's minimum.
type RankError struct {
	Required model.Rank
	Actual   model.Rank
}

func (e *RankError) Error() string {
	return fmt.Sprintf("requires at least %s rank, actor is %s", e.Required.Label(), e.Actual.Label())
}

// Authorizer consolidates the load-actor / check-live / compare-rank
// sequence that would otherwise repeat at every mutation site.
type Authorizer struct {
	users UserStore
}

// New returns an Authorizer reading actors from the given store.
func New(users UserStore) *Authorizer {
	return &Authorizer{users: users}
}

// Require re-reads the actor and verifies it is live and holds at least
// the minimum rank.  On success it returns the freshly loaded user so the
// caller can reuse the row without a second query.
func (a *Authorizer) Require(ctx context.Context, actorID uint64, min model.Rank) (model.User, error) {
	u, err := a.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrActorNotFound
		}
		return model.User{}, err
	}
	if u.DeletedAt != nil || !u.Status {
		return model.User{}, ErrActorNotFound
	}
	if !u.Role.AtLeast(min) {
		return model.User{}, &RankError{Required: min, Actual: u.Role}
	}
	return u, nil
}

// RequireOther is Require plus the self-action guard: the operation must
// target a different account.  Account deletion uses it so no rank,
// including admin, can delete its own account and lock itself out.
func (a *Authorizer) RequireOther(ctx context.Context, actorID uint64, min model.Rank, targetID uint64) (model.User, error) {
	if actorID == targetID {
		return model.User{}, ErrSelfAction
	}
	return a.Require(ctx, actorID, min)
}
