package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/saas-webapp/web/internal/client"
	"github.com/saas-webapp/web/internal/config"
	"github.com/saas-webapp/web/internal/model"
	"github.com/saas-webapp/web/internal/store"
)

type fakeUpstream struct {
	srv          *httptest.Server
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32

	mu          sync.Mutex
	refreshCode int
	refreshBody string
}

func (f *fakeUpstream) setRefresh(code int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCode = code
	f.refreshBody = body
}

func newFakeUpstream(t *testing.T, loginToken string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{refreshCode: http.StatusOK, refreshBody: `{"id":42,"username":"alice","credits":25}`}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": loginToken})
	})
	mux.HandleFunc("/user/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+loginToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		code, body := f.refreshCode, f.refreshBody
		f.mu.Unlock()
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		_, _ = w.Write([]byte(`{"message":"User logged out successfully"}`))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestSessionService(t *testing.T, baseURL string) (*SessionService, *store.MemoryStore) {
	t.Helper()
	decoder, _ := NewTokenDecoder(testJWTSecret)
	backend := client.NewBackendClient(config.BackendConfig{BaseURL: baseURL})
	relay := NewCredentialRelay(backend, decoder, nil, nil)
	mem := store.NewMemoryStore()
	return NewSessionService(relay, backend, mem, nil), mem
}

func TestLoginMaterializesSession(t *testing.T) {
	token := aliceToken(t)
	up := newFakeUpstream(t, token)
	svc, mem := newTestSessionService(t, up.srv.URL)

	sess, err := svc.Login(context.Background(), model.Credentials{Username: "alice", Password: "correct"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.ID != "42" || sess.Username != "alice" || sess.StartingCredits != 10 {
		t.Fatalf("session = %+v", sess)
	}
	if sess.AccessToken != token || sess.Key == "" {
		t.Fatalf("session missing token or key: %+v", sess)
	}

	stored, err := mem.Load(context.Background(), sess.Key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Username != "alice" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestLoginFailureStoresNothing(t *testing.T) {
	up := newFakeUpstream(t, aliceToken(t))
	svc, mem := newTestSessionService(t, up.srv.URL)

	sess, err := svc.Login(context.Background(), model.Credentials{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if sess != nil {
		t.Fatalf("Login() session = %+v, want nil", sess)
	}
	if mem.Len() != 0 {
		t.Fatalf("store has %d sessions, want 0", mem.Len())
	}
}

func TestRefreshUpdatesSessionAndKeepsToken(t *testing.T) {
	token := aliceToken(t)
	up := newFakeUpstream(t, token)
	svc, mem := newTestSessionService(t, up.srv.URL)
	ctx := context.Background()

	sess, err := svc.Login(ctx, model.Credentials{Username: "alice", Password: "correct"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	updated, err := svc.Refresh(ctx, sess)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if updated.StartingCredits != 25 || updated.AccessToken != token || updated.Key != sess.Key {
		t.Fatalf("updated = %+v", updated)
	}
	if sess.StartingCredits != 10 {
		t.Fatalf("Refresh() mutated the caller's session")
	}

	stored, _ := mem.Load(ctx, sess.Key)
	if stored.StartingCredits != 25 {
		t.Fatalf("stored credits = %d, want 25", stored.StartingCredits)
	}
}

func TestRefreshWithoutTokenSkipsUpstream(t *testing.T) {
	up := newFakeUpstream(t, aliceToken(t))
	svc, _ := newTestSessionService(t, up.srv.URL)

	for _, sess := range []*model.Session{nil, {Key: "k", Username: "alice"}} {
		if _, err := svc.Refresh(context.Background(), sess); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Refresh() error = %v, want ErrUnauthorized", err)
		}
	}
	if n := up.refreshCalls.Load(); n != 0 {
		t.Fatalf("refresh endpoint called %d times, want 0", n)
	}
}

func TestRefreshErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		body  string
		token string
		want  error
	}{
		{name: "upstream-401", token: "stale", want: ErrUnauthorized},
		{name: "upstream-500", code: http.StatusInternalServerError, want: ErrRefreshFailed},
		{name: "empty-body", code: http.StatusOK, body: "", want: ErrRefreshFailed},
		{name: "bad-json", code: http.StatusOK, body: "{", want: ErrRefreshFailed},
		{name: "null-body", code: http.StatusOK, body: "null", want: ErrRefreshFailed},
		{name: "empty-object", code: http.StatusOK, body: "{}", want: ErrRefreshFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := aliceToken(t)
			up := newFakeUpstream(t, token)
			if tt.code != 0 {
				up.setRefresh(tt.code, tt.body)
			}
			svc, _ := newTestSessionService(t, up.srv.URL)

			held := token
			if tt.token != "" {
				held = tt.token
			}
			_, err := svc.Refresh(context.Background(), &model.Session{Key: "k", AccessToken: held})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Refresh() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRefreshKeepsStoredSessionOnIncompletePayload(t *testing.T) {
	for _, body := range []string{"null", "{}"} {
		t.Run(body, func(t *testing.T) {
			up := newFakeUpstream(t, aliceToken(t))
			svc, mem := newTestSessionService(t, up.srv.URL)
			ctx := context.Background()

			sess, err := svc.Login(ctx, model.Credentials{Username: "alice", Password: "correct"})
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			up.setRefresh(http.StatusOK, body)
			if _, err := svc.Refresh(ctx, sess); !errors.Is(err, ErrRefreshFailed) {
				t.Fatalf("Refresh() error = %v, want ErrRefreshFailed", err)
			}

			stored, err := mem.Load(ctx, sess.Key)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if stored.ID != "42" || stored.Username != "alice" || stored.StartingCredits != 10 {
				t.Fatalf("stored session changed: %+v", stored)
			}
		})
	}
}

func TestRefreshTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc, _ := newTestSessionService(t, url)
	_, err := svc.Refresh(context.Background(), &model.Session{Key: "k", AccessToken: "tok"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Refresh() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestSignOutDeletesSession(t *testing.T) {
	up := newFakeUpstream(t, aliceToken(t))
	svc, mem := newTestSessionService(t, up.srv.URL)
	ctx := context.Background()

	sess, err := svc.Login(ctx, model.Credentials{Username: "alice", Password: "correct"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := svc.SignOut(ctx, sess); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := svc.Get(ctx, sess.Key); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if up.logoutCalls.Load() != 1 {
		t.Fatalf("logout calls = %d, want 1", up.logoutCalls.Load())
	}
	if mem.Len() != 0 {
		t.Fatalf("store has %d sessions", mem.Len())
	}
}

func TestGetEmptyKey(t *testing.T) {
	svc, _ := newTestSessionService(t, "http://unused")
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Get(\"\") error = %v, want ErrUnauthorized", err)
	}
}
