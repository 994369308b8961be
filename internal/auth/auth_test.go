package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *Store {
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	for i := range hashKey {
		hashKey[i] = byte(i)
		blockKey[i] = byte(255 - i)
	}
	return NewStore(nil, hashKey, blockKey)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	require.NoError(t, s.SetSession(w, httptest.NewRequest("GET", "/", nil), 7))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookies[0])
	sess, ok := s.GetSession(r)
	require.True(t, ok)
	assert.Equal(t, int64(7), sess.OperatorID)
}

func TestGetSessionRejectsForgedCookie(t *testing.T) {
	s := testStore()

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "clubsched_session", Value: "forged"})
	_, ok := s.GetSession(r)
	assert.False(t, ok)
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	s := testStore()

	called := false
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAuthPassesOperatorID(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	require.NoError(t, s.SetSession(w, httptest.NewRequest("GET", "/", nil), 42))
	cookie := w.Result().Cookies()[0]

	var gotID int64
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := OperatorIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, int64(42), gotID)
}
