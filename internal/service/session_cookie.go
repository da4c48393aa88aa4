package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saas-webapp/web/internal/config"
)

const sessionIssuer = "saas-webapp"

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// SessionCookieCodec signs the session store key into the browser cookie with
// NEXTAUTH_SECRET. The cookie carries nothing but the key.
type SessionCookieCodec struct {
	secret    []byte
	ttl       time.Duration
	cookieCfg CookieConfig
	now       func() time.Time
}

func NewSessionCookieCodec(cfg config.AuthConfig) (*SessionCookieCodec, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("%w: NEXTAUTH_SECRET is required", ErrMisconfigured)
	}

	ttl, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	name := cfg.CookieName
	if strings.TrimSpace(name) == "" {
		name = "session_token"
	}

	return &SessionCookieCodec{
		secret: []byte(cfg.SessionSecret),
		ttl:    ttl,
		cookieCfg: CookieConfig{
			Name:     name,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(ttl.Seconds()),
		},
		now: time.Now,
	}, nil
}

func (c *SessionCookieCodec) CookieConfig() CookieConfig {
	return c.cookieCfg
}

func (c *SessionCookieCodec) Encode(sessionKey string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sessionKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *SessionCookieCodec) Decode(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithIssuer(sessionIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	token, err := parser.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", value)
	}
}
