package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustamli/newsdesk-admin/internal/model"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	i := NewIssuer("test-secret", time.Hour)
	u := model.User{ID: 7, Name: "Aysel", Surname: "Quliyeva", Email: "aysel@example.com", Role: model.RankEditor}

	raw, exp, err := i.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), exp, 5*time.Second)

	claims, err := i.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, model.RankEditor, claims.Rank)
	assert.Equal(t, "Aysel Quliyeva", claims.DisplayName)
}

func TestVerifyFailsClosed(t *testing.T) {
	i := NewIssuer("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := i.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewIssuer("other-secret", time.Hour)
		raw, _, err := other.Issue(model.User{ID: 1, Email: "x@example.com"})
		require.NoError(t, err)
		_, verr := i.Verify(raw)
		assert.ErrorIs(t, verr, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewIssuer("test-secret", -time.Minute)
		raw, _, err := short.Issue(model.User{ID: 1, Email: "x@example.com"})
		require.NoError(t, err)
		_, verr := i.Verify(raw)
		assert.ErrorIs(t, verr, ErrInvalidToken)
	})
}

func TestVerifyClampsUnknownRank(t *testing.T) {
	i := NewIssuer("test-secret", time.Hour)
	raw, _, err := i.Issue(model.User{ID: 3, Email: "x@example.com", Role: model.Rank(9)})
	require.NoError(t, err)

	claims, err := i.Verify(raw)
	require.NoError(t, err)
	// A corrupt role value must never decode into elevated access.
	assert.Equal(t, model.RankReporter, claims.Rank)
}
