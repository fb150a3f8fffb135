package interfaces

import (
	"encoding/json"
	"errors"
	"github.com/sebuszqo/UnionSignup/internal/signup/application"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"github.com/sebuszqo/UnionSignup/internal/signup/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type linkFixture struct {
	sessions *infrastructure.MemorySessionStore
	source   *application.MockLinkTokenSource
	handler  *LinkHandler
	draft    *domain.Draft
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	sessions := infrastructure.NewMemorySessionStore()
	draft, err := sessions.Create(time.Hour)
	require.NoError(t, err)

	source := &application.MockLinkTokenSource{}
	return &linkFixture{
		sessions: sessions,
		source:   source,
		handler:  NewLinkHandler(application.NewLinkService(sessions, source), sessions, respondJSON, respondError),
		draft:    draft,
	}
}

func (f *linkFixture) call(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: f.draft.ID})
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func (f *linkFixture) connect(t *testing.T) string {
	t.Helper()
	w := f.call(f.handler.HandleLinkToken, "/api/signup/bank/link-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status string                  `json:"status"`
		Data   application.LinkSession `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "link-sandbox-token", response.Data.LinkToken)
	require.NotEmpty(t, response.Data.AttemptID)
	return response.Data.AttemptID
}

func linkedBody(attemptID string) string {
	return `{"attempt_id":"` + attemptID + `","public_token":"public-sandbox-1",` +
		`"metadata":{"institution":{"name":"First Platypus Bank"},"accounts":[{"id":"acc-1","name":"Checking"},{"id":"acc-2","name":"Savings"}]}}`
}

func TestLinkHandler_ConnectAndComplete(t *testing.T) {
	f := newLinkFixture(t)
	attemptID := f.connect(t)

	w := f.call(f.handler.HandleLinked, "/api/signup/bank/linked", linkedBody(attemptID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First Platypus Bank - Checking")

	draft, err := f.sessions.Get(f.draft.ID)
	require.NoError(t, err)
	require.NotNil(t, draft.Linked)
	assert.Equal(t, "acc-1", draft.Linked.AccountID)
	assert.Equal(t, domain.LinkIdle, draft.LinkState)
}

func TestLinkHandler_StaleAttempt(t *testing.T) {
	f := newLinkFixture(t)
	first := f.connect(t)
	f.connect(t)

	w := f.call(f.handler.HandleLinked, "/api/signup/bank/linked", linkedBody(first))

	assert.Equal(t, http.StatusConflict, w.Code)
	var response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "error", response.Status)
	assert.NotEmpty(t, response.Message)
	draft, _ := f.sessions.Get(f.draft.ID)
	assert.Nil(t, draft.Linked)
}

func TestLinkHandler_TokenUnavailable(t *testing.T) {
	f := newLinkFixture(t)
	f.source.Err = errors.New("connection refused")

	w := f.call(f.handler.HandleLinkToken, "/api/signup/bank/link-token", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
	draft, _ := f.sessions.Get(f.draft.ID)
	assert.Equal(t, domain.LinkIdle, draft.LinkState)
}

func TestLinkHandler_Exit(t *testing.T) {
	f := newLinkFixture(t)
	attemptID := f.connect(t)

	w := f.call(f.handler.HandleLinkExit, "/api/signup/bank/exit", `{"attempt_id":"`+attemptID+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	draft, _ := f.sessions.Get(f.draft.ID)
	assert.Equal(t, domain.LinkIdle, draft.LinkState)
	assert.Empty(t, draft.LinkAttemptID)

	w = f.call(f.handler.HandleLinkExit, "/api/signup/bank/exit", `{"attempt_id":"`+attemptID+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLinkHandler_InvalidBody(t *testing.T) {
	f := newLinkFixture(t)

	w := f.call(f.handler.HandleLinked, "/api/signup/bank/linked", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.call(f.handler.HandleLinkExit, "/api/signup/bank/exit", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkHandler_NoSession(t *testing.T) {
	f := newLinkFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/signup/bank/link-token", nil)
	w := httptest.NewRecorder()

	f.handler.HandleLinkToken(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, f.source.Calls)
}

func TestLinkHandler_RemoveBank(t *testing.T) {
	f := newLinkFixture(t)
	f.draft.Linked = &domain.LinkedAccountToken{PublicToken: "public-1", AccountID: "acc-1"}
	require.NoError(t, f.sessions.Save(f.draft))

	w := f.call(f.handler.HandleRemoveBank, "/signup/bank/remove", "")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signup", w.Header().Get("Location"))
	draft, _ := f.sessions.Get(f.draft.ID)
	assert.Nil(t, draft.Linked)
}
