package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustamli/newsdesk-admin/internal/auth"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

func newGuardTest(t *testing.T) (*echo.Echo, *auth.Issuer, echo.MiddlewareFunc) {
	t.Helper()
	issuer := auth.NewIssuer("guard-test-secret", time.Hour)
	guard := SessionGuard(GuardConfig{Issuer: issuer, LoginPath: "/login"})
	return echo.New(), issuer, guard
}

func tokenFor(t *testing.T, issuer *auth.Issuer, id uint64, rank model.Rank) string {
	t.Helper()
	raw, _, err := issuer.Issue(model.User{ID: id, Name: "Test", Email: "t@example.com", Role: rank})
	require.NoError(t, err)
	return raw
}

// run pushes a request through the guard with a terminal handler that
// records whether it was reached.
func run(e *echo.Echo, guard echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, *bool) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	reached := false
	h := guard(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, &reached
}

func TestGuardRedirectsAnonymousNavigationToLogin(t *testing.T) {
	e, _, guard := newGuardTest(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/users", nil)
	rec, reached := run(e, guard, req)

	assert.False(t, *reached)
	assert.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/dashboard/users", loc.Query().Get("callbackUrl"))
}

func TestGuardReturns401ForAnonymousAPI(t *testing.T) {
	e, _, guard := newGuardTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec, reached := run(e, guard, req)

	assert.False(t, *reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
}

func TestGuardRejectsTamperedToken(t *testing.T) {
	e, _, guard := newGuardTest(t)
	other := auth.NewIssuer("different-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, 1, model.RankAdmin))
	rec, reached := run(e, guard, req)

	assert.False(t, *reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardConfinesNonAdminNavigation(t *testing.T) {
	e, issuer, guard := newGuardTest(t)
	token := tokenFor(t, issuer, 1, model.RankEditor)

	cases := []struct {
		path     string
		redirect bool
	}{
		{"/dashboard", true},
		{"/dashboard/users", true},
		{"/dashboard/settings", true},
		{"/dashboard/posts", false},
		{"/dashboard/posts/42", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
			rec, reached := run(e, guard, req)
			if tc.redirect {
				assert.Equal(t, http.StatusFound, rec.Code)
				assert.Equal(t, "/dashboard/posts", rec.Header().Get("Location"))
				assert.False(t, *reached)
			} else {
				assert.True(t, *reached)
			}
		})
	}
}

func TestGuardReturns403ForNonAdminElevatedAPI(t *testing.T) {
	e, issuer, guard := newGuardTest(t)

	for _, rank := range []model.Rank{model.RankReporter, model.RankEditor} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 1, rank))
		rec, reached := run(e, guard, req)

		assert.False(t, *reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "icazəniz yoxdur")
	}
}

func TestGuardAllowsNonAdminPostsAPI(t *testing.T) {
	e, issuer, guard := newGuardTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 5, model.RankReporter))
	_, reached := run(e, guard, req)

	assert.True(t, *reached)
}

func TestGuardAllowsEveryRankOnSessionEndpoint(t *testing.T) {
	e, issuer, guard := newGuardTest(t)

	// /api/auth/me sits outside the confined /api/admin area: reporters and
	// editors must be able to introspect their own session.
	for _, rank := range []model.Rank{model.RankReporter, model.RankEditor, model.RankAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 3, rank))
		_, reached := run(e, guard, req)
		assert.True(t, *reached, rank.Label())
	}

	// Still authenticated-only.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec, reached := run(e, guard, req)
	assert.False(t, *reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardAllowsAdminEverywhere(t *testing.T) {
	e, issuer, guard := newGuardTest(t)
	token := tokenFor(t, issuer, 9, model.RankAdmin)

	for _, path := range []string{"/dashboard", "/dashboard/users", "/api/admin/users", "/api/admin/posts"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, reached := run(e, guard, req)
		assert.True(t, *reached, path)
	}
}

func TestGuardStoresClaimsInContext(t *testing.T) {
	e, issuer, _ := newGuardTest(t)
	guard := SessionGuard(GuardConfig{Issuer: issuer, LoginPath: "/login"})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 7, model.RankEditor))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var id uint64
	var rank model.Rank
	var name string
	h := guard(func(c echo.Context) error {
		id, rank, name = ActorID(c), ActorRank(c), ActorName(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.Equal(t, uint64(7), id)
	assert.Equal(t, model.RankEditor, rank)
	assert.Equal(t, "Test", name)
}

func TestGuardCountsDenials(t *testing.T) {
	issuer := auth.NewIssuer("guard-test-secret", time.Hour)
	var kinds []string
	guard := SessionGuard(GuardConfig{
		Issuer:    issuer,
		LoginPath: "/login",
		OnDenial:  func(kind string) { kinds = append(kinds, kind) },
	})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	run(e, guard, req)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, 1, model.RankReporter))
	run(e, guard, req)

	assert.Equal(t, []string{"unauthenticated", "forbidden"}, kinds)
}
