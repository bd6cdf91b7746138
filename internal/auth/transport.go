package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/tokens"
)

// Transport carries a raw token between client and server over one channel.
// It knows nothing about token semantics.
type Transport interface {
	Write(c echo.Context, token string)
	Clear(c echo.Context)
	Read(c echo.Context) (string, bool)
}

// TransportConfig describes which channels carry each token kind. Built once
// at startup; the resulting transport order is fixed for the process.
type TransportConfig struct {
	Method        string // "cookies", "headers" or "all"
	HeaderPrefix  string
	AccessHeader  string
	RefreshHeader string
	CookieDomain  string
	SecureCookies bool
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewTransports resolves the configuration into the ordered transport lists
// per token kind. Order matters: read returns the first channel with a token.
func NewTransports(cfg TransportConfig) map[tokens.Kind][]Transport {
	var access, refresh []Transport

	if cfg.Method == "cookies" || cfg.Method == "all" {
		access = append(access, &CookieTransport{
			Name:     "access_token",
			MaxAge:   cfg.AccessTTL,
			Path:     "/",
			Domain:   cfg.CookieDomain,
			Secure:   cfg.SecureCookies,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		refresh = append(refresh, &CookieTransport{
			Name:     "refresh_token",
			MaxAge:   cfg.RefreshTTL,
			Path:     "/",
			Domain:   cfg.CookieDomain,
			Secure:   cfg.SecureCookies,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if cfg.Method == "headers" || cfg.Method == "all" {
		access = append(access, &HeaderTransport{Name: cfg.AccessHeader, Scheme: cfg.HeaderPrefix})
		refresh = append(refresh, &HeaderTransport{Name: cfg.RefreshHeader, Scheme: cfg.HeaderPrefix})
	}

	return map[tokens.Kind][]Transport{
		tokens.KindAccess:  access,
		tokens.KindRefresh: refresh,
	}
}
