package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/jobhub/internal/tokens"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestCookieTransport_WriteRead(t *testing.T) {
	tr := &CookieTransport{
		Name:     "access_token",
		MaxAge:   time.Minute,
		HTTPOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	c, rec := newTestContext(t)
	tr.Write(c, "tok-123")

	ck := responseCookie(t, rec, "access_token")
	require.NotNil(t, ck)
	require.Equal(t, "tok-123", ck.Value)
	require.Equal(t, "/", ck.Path)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.Equal(t, 60, ck.MaxAge)

	// read the token back off a request carrying that cookie
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok-123"})
	c2 := e.NewContext(req, httptest.NewRecorder())

	got, ok := tr.Read(c2)
	require.True(t, ok)
	require.Equal(t, "tok-123", got)
}

func TestCookieTransport_ReadAbsent(t *testing.T) {
	tr := &CookieTransport{Name: "access_token"}
	c, _ := newTestContext(t)

	_, ok := tr.Read(c)
	require.False(t, ok)
}

func TestCookieTransport_ClearExpiresCookie(t *testing.T) {
	tr := &CookieTransport{Name: "refresh_token", MaxAge: time.Hour}
	c, rec := newTestContext(t)
	tr.Clear(c)

	ck := responseCookie(t, rec, "refresh_token")
	require.NotNil(t, ck)
	require.Empty(t, ck.Value)
	require.Less(t, ck.MaxAge, 0)
	require.True(t, ck.Expires.Before(time.Now()))
}

func TestHeaderTransport_ReadStripsScheme(t *testing.T) {
	tr := &HeaderTransport{Name: "Authorization", Scheme: "Bearer"}

	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"with scheme", "Bearer tok-1", "tok-1", true},
		{"bare token", "tok-2", "tok-2", true},
		{"extra whitespace", "Bearer   tok-3  ", "tok-3", true},
		{"scheme only", "Bearer ", "", false},
		{"absent", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			got, ok := tr.Read(c)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestHeaderTransport_WriteSetsScheme(t *testing.T) {
	tr := &HeaderTransport{Name: "Authorization", Scheme: "Bearer"}
	c, rec := newTestContext(t)

	tr.Write(c, "tok-9")
	require.Equal(t, "Bearer tok-9", rec.Header().Get("Authorization"))

	tr.Clear(c)
	require.Empty(t, rec.Header().Get("Authorization"))
}

func TestNewTransports_MethodSelection(t *testing.T) {
	base := TransportConfig{
		HeaderPrefix:  "Bearer",
		AccessHeader:  "Authorization",
		RefreshHeader: "X-Refresh-Token",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}

	cookies := base
	cookies.Method = "cookies"
	got := NewTransports(cookies)
	require.Len(t, got[tokens.KindAccess], 1)
	require.Len(t, got[tokens.KindRefresh], 1)
	require.IsType(t, &CookieTransport{}, got[tokens.KindAccess][0])

	headers := base
	headers.Method = "headers"
	got = NewTransports(headers)
	require.Len(t, got[tokens.KindAccess], 1)
	require.IsType(t, &HeaderTransport{}, got[tokens.KindAccess][0])

	all := base
	all.Method = "all"
	got = NewTransports(all)
	require.Len(t, got[tokens.KindAccess], 2)
	require.Len(t, got[tokens.KindRefresh], 2)
	// cookies come first, so a cookie token wins over a header one
	require.IsType(t, &CookieTransport{}, got[tokens.KindAccess][0])
	require.IsType(t, &HeaderTransport{}, got[tokens.KindAccess][1])
}
