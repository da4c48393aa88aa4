package service

import (
	"encoding/json"
	"strings"

	"github.com/saas-webapp/web/internal/client"
)

// TokenExtractor pulls a bearer token out of an upstream login response.
type TokenExtractor interface {
	Name() string
	Extract(resp *client.LoginResponse) (string, bool)
}

// DefaultExtractors lists the strategies in precedence order: the JSON body wins
// over Set-Cookie even when both carry a token.
func DefaultExtractors() []TokenExtractor {
	return []TokenExtractor{
		JSONBodyExtractor{Field: "access_token"},
		SetCookieExtractor{},
	}
}

// JSONBodyExtractor reads a top-level string field of a JSON object body.
type JSONBodyExtractor struct {
	Field string
}

func (e JSONBodyExtractor) Name() string {
	return "json:" + e.Field
}

func (e JSONBodyExtractor) Extract(resp *client.LoginResponse) (string, bool) {
	if resp == nil || len(resp.Body) == 0 {
		return "", false
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", false
	}
	raw, ok := body[e.Field]
	if !ok {
		return "", false
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetCookieExtractor takes the value of the first directive of the first
// Set-Cookie header, whatever the cookie is named.
type SetCookieExtractor struct{}

func (SetCookieExtractor) Name() string {
	return "set-cookie"
}

func (SetCookieExtractor) Extract(resp *client.LoginResponse) (string, bool) {
	if resp == nil || resp.Header == nil {
		return "", false
	}
	header := resp.Header.Get("Set-Cookie")
	if header == "" {
		return "", false
	}
	first, _, _ := strings.Cut(header, ";")
	_, value, ok := strings.Cut(first, "=")
	if !ok {
		return "", false
	}
	value = strings.Trim(strings.TrimSpace(value), `"`)
	return value, value != ""
}
