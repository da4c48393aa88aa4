package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saas-webapp/web/internal/config"
)

func TestLoginSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "p&ss=word" {
			t.Errorf("form = %v", r.PostForm)
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"User logged in successfully"}`))
	}))
	defer srv.Close()

	c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL + "/"})
	resp, err := c.Login(context.Background(), "alice", "p&ss=word")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Set-Cookie") == "" {
		t.Fatal("expected Set-Cookie header")
	}
}

func TestLoginReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid username or password"}`))
	}))
	defer srv.Close()

	c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL})
	resp, err := c.Login(context.Background(), "alice", "wrong")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("StatusCode = %d, want 401", resp.StatusCode)
	}
}

func TestRefreshSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/refresh-session" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":42,"username":"alice","credits":25}`))
	}))
	defer srv.Close()

	c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL})
	user, err := c.RefreshSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}
	if user.ID.String() != "42" || user.Username != "alice" || user.Credits != 25 {
		t.Fatalf("user = %+v", user)
	}
}

func TestRefreshSessionStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL})
	_, err := c.RefreshSession(context.Background(), "expired")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("RefreshSession() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("StatusCode = %d, want 401", statusErr.StatusCode)
	}
}

func TestRefreshSessionEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL})
	if _, err := c.RefreshSession(context.Background(), "tok"); err == nil {
		t.Fatal("RefreshSession() expected error for empty body")
	}
}

func TestRefreshSessionRejectsIncompleteUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null", body: `null`},
		{name: "empty-object", body: `{}`},
		{name: "missing-username", body: `{"id":42,"credits":5}`},
		{name: "missing-id", body: `{"username":"alice"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewBackendClient(config.BackendConfig{BaseURL: srv.URL})
			user, err := c.RefreshSession(context.Background(), "tok")
			if err == nil {
				t.Fatalf("RefreshSession() = %+v, want error", user)
			}
		})
	}
}

func TestNewBackendClientTimeoutFallback(t *testing.T) {
	c := NewBackendClient(config.BackendConfig{BaseURL: "http://x", Timeout: "bogus"})
	if c.httpClient.Timeout != defaultBackendTimeout {
		t.Fatalf("Timeout = %s, want %s", c.httpClient.Timeout, defaultBackendTimeout)
	}
	if !c.IsConfigured() {
		t.Fatal("IsConfigured() = false, want true")
	}
	if NewBackendClient(config.BackendConfig{}).IsConfigured() {
		t.Fatal("IsConfigured() = true for empty base URL")
	}
}
