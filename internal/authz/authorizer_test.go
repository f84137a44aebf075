package authz

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustamli/newsdesk-admin/internal/model"
)

// fakeUserStore serves canned user rows keyed by id.
type fakeUserStore struct {
	users map[uint64]model.User
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func activeUser(id uint64, rank model.Rank) model.User {
	return model.User{ID: id, Name: "U", Email: "u@example.com", Role: rank, Status: true}
}

func TestRequireRankOrdering(t *testing.T) {
	store := &fakeUserStore{users: map[uint64]model.User{
		1: activeUser(1, model.RankReporter),
		2: activeUser(2, model.RankEditor),
		3: activeUser(3, model.RankAdmin),
	}}
	a := New(store)
	ctx := context.Background()

	// Higher ranks always satisfy lower requirements.
	_, err := a.Require(ctx, 3, model.RankEditor)
	assert.NoError(t, err, "admin must pass an editor-only check")
	_, err = a.Require(ctx, 2, model.RankEditor)
	assert.NoError(t, err)
	_, err = a.Require(ctx, 1, model.RankReporter)
	assert.NoError(t, err)

	_, err = a.Require(ctx, 1, model.RankEditor)
	var re *RankError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, model.RankEditor, re.Required)
	assert.Equal(t, model.RankReporter, re.Actual)
	assert.Contains(t, re.Error(), "editor")
}

func TestRequireDeniesDeadActors(t *testing.T) {
	deleted := activeUser(4, model.RankAdmin)
	now := time.Now()
	deleted.DeletedAt = &now
	inactive := activeUser(5, model.RankAdmin)
	inactive.Status = false

	store := &fakeUserStore{users: map[uint64]model.User{4: deleted, 5: inactive}}
	a := New(store)
	ctx := context.Background()

	// Missing, soft-deleted and deactivated all collapse into the same
	// not-found denial so callers cannot probe for account existence.
	for _, id := range []uint64{4, 5, 99} {
		_, err := a.Require(ctx, id, model.RankReporter)
		assert.ErrorIs(t, err, ErrActorNotFound, "actor %d", id)
	}
}

func TestRequireOtherRejectsSelfAtAnyRank(t *testing.T) {
	store := &fakeUserStore{users: map[uint64]model.User{
		1: activeUser(1, model.RankReporter),
		3: activeUser(3, model.RankAdmin),
	}}
	a := New(store)
	ctx := context.Background()

	for _, id := range []uint64{1, 3} {
		_, err := a.RequireOther(ctx, id, model.RankAdmin, id)
		assert.ErrorIs(t, err, ErrSelfAction, "actor %d", id)
	}

	// Different target passes through to the normal check.
	_, err := a.RequireOther(ctx, 3, model.RankAdmin, 1)
	assert.NoError(t, err)
}

func TestRequireUsesStoredRoleNotSessionClaim(t *testing.T) {
	store := &fakeUserStore{users: map[uint64]model.User{
		7: activeUser(7, model.RankEditor),
	}}
	a := New(store)
	ctx := context.Background()

	_, err := a.Require(ctx, 7, model.RankEditor)
	require.NoError(t, err)

	// Demote in the store; the next check must deny even though any
	// session token issued earlier still says "editor".
	store.users[7] = activeUser(7, model.RankReporter)
	_, err = a.Require(ctx, 7, model.RankEditor)
	var re *RankError
	assert.ErrorAs(t, err, &re)
}
