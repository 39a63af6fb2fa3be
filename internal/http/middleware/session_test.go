package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions() *Sessions {
	return NewSessions("test-secret", "maacare_session", time.Hour, false)
}

func TestIssueThenParse(t *testing.T) {
	s := newTestSessions()

	rec := httptest.NewRecorder()
	sid, err := s.Issue(rec, "maya")
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.AddCookie(cookies[0])

	sess, ok := s.Parse(req)
	require.True(t, ok)
	assert.Equal(t, "maya", sess.Username)
	assert.Equal(t, sid, sess.ID)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	s := newTestSessions()

	rec := httptest.NewRecorder()
	_, err := s.Issue(rec, "maya")
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, ok := s.Parse(req)
	assert.False(t, ok)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	issuer := NewSessions("other-secret", "maacare_session", time.Hour, false)
	rec := httptest.NewRecorder()
	_, err := issuer.Issue(rec, "maya")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, ok := newTestSessions().Parse(req)
	assert.False(t, ok)
}

func TestRequireBlocksAnonymous(t *testing.T) {
	s := newTestSessions()
	handler := s.Require(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePassesSessionToContext(t *testing.T) {
	s := newTestSessions()

	var got *Session
	handler := s.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	_, err := s.Issue(rec, "maya")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	out := httptest.NewRecorder()
	handler.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	require.NotNil(t, got)
	assert.Equal(t, "maya", got.Username)
}

func TestClearExpiresCookie(t *testing.T) {
	s := newTestSessions()
	rec := httptest.NewRecorder()
	s.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}
