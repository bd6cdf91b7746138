package authmw

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/models"
	"github.com/mkurbatov/jobhub/internal/tokens"
)

type fakeUsers struct {
	users map[uint]*models.User
}

func (f *fakeUsers) ByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

type testStack struct {
	E     *echo.Echo
	Svc   *auth.TokenAuth
	Codec *tokens.Codec
	Users *fakeUsers
}

func newTestStack(t *testing.T, accessTTL time.Duration) *testStack {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	codec := tokens.NewCodec(key, &key.PublicKey, "jobhub-test", accessTTL, 24*time.Hour)
	transports := auth.NewTransports(auth.TransportConfig{
		Method:     "cookies",
		AccessTTL:  accessTTL,
		RefreshTTL: 24 * time.Hour,
	})
	users := &fakeUsers{users: map[uint]*models.User{}}

	return &testStack{
		E:     echo.New(),
		Svc:   auth.NewTokenAuth(codec, transports, nil),
		Codec: codec,
		Users: users,
	}
}

// do runs a request through Refresh, Authenticate, an optional guard and a
// handler echoing the resolved principal.
func (s *testStack) do(t *testing.T, cookies []*http.Cookie, guard echo.MiddlewareFunc) (*httptest.ResponseRecorder, auth.Principal) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := s.E.NewContext(req, rec)

	var seen auth.Principal
	handler := func(c echo.Context) error {
		seen = auth.PrincipalFrom(c)
		return c.JSON(http.StatusOK, seen)
	}

	h := echo.HandlerFunc(handler)
	if guard != nil {
		h = guard(h)
	}
	h = Authenticate(s.Svc, s.Users)(h)
	h = Refresh(s.Svc)(h)

	if err := h(c); err != nil {
		s.E.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func (s *testStack) addUser(u *models.User) {
	s.Users.users[u.ID] = u
}

func (s *testStack) issue(t *testing.T, kind tokens.Kind, userID uint, super bool) *http.Cookie {
	t.Helper()
	raw, err := s.Codec.Issue(kind, userID, super)
	require.NoError(t, err)
	name := "access_token"
	if kind == tokens.KindRefresh {
		name = "refresh_token"
	}
	return &http.Cookie{Name: name, Value: raw}
}

func TestAuthenticate_NoToken_Anonymous(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	rec, p := s.do(t, nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, p.IsAnonymous())
	require.True(t, p.IsActive)
}

func TestAuthenticate_ValidToken_RealPrincipal(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	s.addUser(&models.User{ID: 11, Email: "u@x.y", IsActive: true, IsVerified: true})

	rec, p := s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 11, false)}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, p.IsAnonymous())
	require.Equal(t, uint(11), *p.ID)
	require.Equal(t, "u@x.y", *p.Email)
}

func TestAuthenticate_DeletedUser_Anonymous(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	// token for a user the store no longer has
	rec, p := s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 404, false)}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, p.IsAnonymous())
}

func TestRefresh_SilentRenewal(t *testing.T) {
	// access tokens expire immediately, only the refresh token survives
	s := newTestStack(t, -time.Minute)
	s.addUser(&models.User{ID: 21, Email: "r@x.y", IsActive: true})

	cookies := []*http.Cookie{
		s.issue(t, tokens.KindAccess, 21, false),
		s.issue(t, tokens.KindRefresh, 21, false),
	}
	rec, p := s.do(t, cookies, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, p.IsAnonymous())
	require.Equal(t, uint(21), *p.ID)

	// the renewed access token went out with the response
	var renewed string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "access_token" {
			renewed = ck.Value
		}
	}
	require.NotEmpty(t, renewed)
	claims, ok := s.Codec.Read(renewed)
	require.True(t, ok)
	require.Equal(t, uint(21), claims.UserID)
}

func TestRefresh_NoRefreshToken_Anonymous(t *testing.T) {
	s := newTestStack(t, -time.Minute)
	s.addUser(&models.User{ID: 21, IsActive: true})

	rec, p := s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 21, false)}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, p.IsAnonymous())

	for _, ck := range rec.Result().Cookies() {
		require.NotEqual(t, "access_token", ck.Name)
	}
}

func TestRefresh_ValidAccess_NoRenewal(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	s.addUser(&models.User{ID: 21, IsActive: true})

	cookies := []*http.Cookie{
		s.issue(t, tokens.KindAccess, 21, false),
		s.issue(t, tokens.KindRefresh, 21, false),
	}
	rec, _ := s.do(t, cookies, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, ck := range rec.Result().Cookies() {
		require.NotEqual(t, "access_token", ck.Name)
	}
}

func TestAuthenticated_Guard(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	s.addUser(&models.User{ID: 31, IsActive: true})

	rec, _ := s.do(t, nil, Authenticated)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), auth.DetailAuthenticationRequired)

	rec, _ = s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 31, false)}, Authenticated)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSuperuser_Guard(t *testing.T) {
	s := newTestStack(t, 15*time.Minute)
	s.addUser(&models.User{ID: 41, IsActive: true})
	s.addUser(&models.User{ID: 42, IsActive: true, IsSuperuser: true})

	rec, _ := s.do(t, nil, Superuser)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 41, false)}, Superuser)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), auth.DetailAuthorizationFailed)

	rec, _ = s.do(t, []*http.Cookie{s.issue(t, tokens.KindAccess, 42, true)}, Superuser)
	require.Equal(t, http.StatusOK, rec.Code)
}
