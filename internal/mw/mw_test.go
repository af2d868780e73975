package mw

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "staff", r.Context().Value(RoleCtxKey))
		w.WriteHeader(http.StatusNoContent)
	})
	h := QueryToken(RequireRole("secret", "staff")(ok))
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "malformed", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + signed(t, "other", jwt.MapClaims{"role": "staff", "exp": exp}), want: http.StatusUnauthorized},
		{name: "no expiry", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"role": "staff"}), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"role": "staff", "exp": jwt.NewNumericDate(time.Now().Add(-time.Hour))}), want: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"role": "guest", "exp": exp}), want: http.StatusForbidden},
		{name: "staff", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"role": "staff", "exp": exp}), want: http.StatusNoContent},
		{name: "query token", query: "?access_token=" + signed(t, "secret", jwt.MapClaims{"role": "staff", "exp": exp}), want: http.StatusNoContent},
		{name: "empty query token", query: "?access_token=", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryToken(t *testing.T) {
	var got *http.Request
	h := QueryToken(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = r
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/events?access_token=s3cret&since=5", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "Bearer s3cret", got.Header.Get("Authorization"))
	assert.Equal(t, "since=5", got.URL.RawQuery)
	assert.Equal(t, "/api/admin/orders/events?since=5", got.RequestURI)
	assert.NotContains(t, got.RequestURI, "s3cret")
	assert.NotContains(t, got.URL.String(), "s3cret")
	// the caller's request is left untouched
	assert.Empty(t, req.Header.Get("Authorization"))

	// an explicit header wins over the query parameter
	req = httptest.NewRequest(http.MethodGet, "/events?access_token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "Bearer from-header", got.Header.Get("Authorization"))
	assert.Equal(t, "/events", got.RequestURI)

	req = httptest.NewRequest(http.MethodGet, "/events?x=1", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Same(t, req, got)
}

func TestQueryToken_HiddenFromRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(&buf, "", 0),
		NoColor: true,
	})
	h := QueryToken(logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc/events?access_token=s3cret", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "/api/orders/abc/events")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestCartSession(t *testing.T) {
	var seen string
	h := CartSession(time.Hour)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: seen})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, cookies[0].Value, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, "not-a-uuid", seen)
}
