package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
	"github.com/rustamli/newsdesk-admin/internal/presence"
)

func editingContext(e *echo.Echo, method, postID string, userID uint64, name string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/api/admin/posts/"+postID+"/editing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/admin/posts/:id/editing")
	c.SetParamNames("id")
	c.SetParamValues(postID)
	middleware.SetActor(c, userID, model.RankReporter, name)
	return c, rec
}

func TestEditingBeginReportsOthers(t *testing.T) {
	e := echo.New()
	tracker := presence.New(5*time.Minute, time.Minute)
	h := NewEditingHandler(tracker)

	c, rec := editingContext(e, http.MethodPost, "41", 7, "Leyla Məmmədova")
	require.NoError(t, h.Begin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var st presence.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.SelfEditing)
	assert.False(t, st.EditingByOthers)
	assert.Empty(t, st.Others)

	// A second editor opens the same post and must see the first.
	c2, rec2 := editingContext(e, http.MethodPost, "41", 8, "Tural Əliyev")
	require.NoError(t, h.Begin(c2))

	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &st))
	assert.True(t, st.SelfEditing)
	assert.True(t, st.EditingByOthers)
	require.Len(t, st.Others, 1)
	assert.Equal(t, uint64(7), st.Others[0].UserID)
	assert.Equal(t, "Leyla Məmmədova", st.Others[0].UserName)
}

func TestEditingStatusDoesNotRegisterCaller(t *testing.T) {
	e := echo.New()
	tracker := presence.New(5*time.Minute, time.Minute)
	h := NewEditingHandler(tracker)

	c, rec := editingContext(e, http.MethodGet, "41", 7, "Leyla Məmmədova")
	require.NoError(t, h.Status(c))

	var st presence.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.SelfEditing)

	// Still nobody there: the GET above must not have created an entry.
	c2, rec2 := editingContext(e, http.MethodGet, "41", 8, "Tural Əliyev")
	require.NoError(t, h.Status(c2))
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &st))
	assert.False(t, st.EditingByOthers)
}

func TestEditingEndClearsEntry(t *testing.T) {
	e := echo.New()
	tracker := presence.New(5*time.Minute, time.Minute)
	h := NewEditingHandler(tracker)

	c, _ := editingContext(e, http.MethodPost, "41", 7, "Leyla Məmmədova")
	require.NoError(t, h.Begin(c))

	cEnd, recEnd := editingContext(e, http.MethodDelete, "41", 7, "Leyla Məmmədova")
	require.NoError(t, h.End(cEnd))
	assert.Equal(t, http.StatusNoContent, recEnd.Code)

	cCheck, recCheck := editingContext(e, http.MethodGet, "41", 8, "Tural Əliyev")
	require.NoError(t, h.Status(cCheck))
	var st presence.Status
	require.NoError(t, json.Unmarshal(recCheck.Body.Bytes(), &st))
	assert.False(t, st.EditingByOthers)

	// Ending again is a no-op.
	cAgain, recAgain := editingContext(e, http.MethodDelete, "41", 7, "Leyla Məmmədova")
	require.NoError(t, h.End(cAgain))
	assert.Equal(t, http.StatusNoContent, recAgain.Code)
}
