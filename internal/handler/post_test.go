package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
	"github.com/rustamli/newsdesk-admin/internal/queue"
	"github.com/rustamli/newsdesk-admin/internal/repository"
)

const adminID = uint64(9)

// newPostTest builds a PostHandler over a mocked database with the purge
// publisher replaced by a channel capture.
func newPostTest(t *testing.T) (*PostHandler, sqlmock.Sqlmock, chan queue.ContentPurgeEvent) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exec := database.NewExecutor(db)
	users := repository.NewUserRepo(db, exec)
	posts := repository.NewPostRepo(db, exec)
	cats := repository.NewCategoryRepo(db, exec)

	h := NewPostHandler(posts, cats, authz.New(users))
	events := make(chan queue.ContentPurgeEvent, 1)
	h.publish = func(_ context.Context, ev queue.ContentPurgeEvent) error {
		events <- ev
		return nil
	}
	return h, mock, events
}

func expectAdminActor(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "surname", "email", "password", "role", "status",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(adminID, "Nigar", "Həsənova", "nigar@example.com", "", 2, true, now, now, nil))
}

func expectPostRow(mock sqlmock.Sqlmock, deleted bool) {
	now := time.Now()
	var deletedAt interface{}
	if deleted {
		deletedAt = now
	}
	mock.ExpectQuery(`SELECT (.+) FROM posts WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "slug", "sub_title", "keywords", "content", "image_url",
			"youtube_link", "publish", "status", "hidden", "view_count",
			"opened_user_id", "published_date", "created_at", "updated_at", "deleted_at",
		}).AddRow(41, "Xəbər", "xeber", nil, nil, "<p>mətn</p>", nil,
			nil, 1, true, false, 0, nil, now, now, now, deletedAt))
}

func patchContext(e *echo.Echo, action string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/posts/41?action="+action, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/admin/posts/:id")
	c.SetParamNames("id")
	c.SetParamValues("41")
	middleware.SetActor(c, adminID, model.RankAdmin, "Nigar Həsənova")
	return c, rec
}

func awaitEvent(t *testing.T, events chan queue.ContentPurgeEvent) queue.ContentPurgeEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no purge event published")
		return queue.ContentPurgeEvent{}
	}
}

func TestPostPatchEmitsPurgeEvents(t *testing.T) {
	cases := []struct {
		action     string
		deletedRow bool
		updateSQL  string
	}{
		{"publish", false, `UPDATE posts\s+SET publish = \?`},
		{"unpublish", false, `UPDATE posts\s+SET publish = \?`},
		{"restore", true, `UPDATE posts SET deleted_at = NULL`},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			h, mock, events := newPostTest(t)
			expectAdminActor(mock)
			expectPostRow(mock, tc.deletedRow)
			mock.ExpectExec(tc.updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))

			c, rec := patchContext(echo.New(), tc.action)
			require.NoError(t, h.Patch(c))
			require.Equal(t, http.StatusOK, rec.Code)

			ev := awaitEvent(t, events)
			wantAction := map[string]string{
				"publish":   "published",
				"unpublish": "unpublished",
				"restore":   "restored",
			}[tc.action]
			assert.Equal(t, wantAction, ev.Action)
			assert.Equal(t, uint64(41), ev.PostID)
			assert.Equal(t, "xeber", ev.Slug)
			assert.Equal(t, adminID, ev.ActorID)
			assert.NotEmpty(t, ev.EventID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostDeleteEmitsPurgeEvent(t *testing.T) {
	h, mock, events := newPostTest(t)
	expectAdminActor(mock)
	expectPostRow(mock, false)
	mock.ExpectExec(`UPDATE posts SET deleted_at = UTC_TIMESTAMP\(\), deleted_by = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/posts/41", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/admin/posts/:id")
	c.SetParamNames("id")
	c.SetParamValues("41")
	middleware.SetActor(c, adminID, model.RankAdmin, "Nigar Həsənova")

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	ev := awaitEvent(t, events)
	assert.Equal(t, "deleted", ev.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
