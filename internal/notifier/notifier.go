// Package notifier is the client side of the session refresh: it asks the
// gateway to refresh the session and projects the result into a Mirror.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saas-webapp/web/internal/model"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL    string
	CookieName string
	Cookie     string
	Timeout    time.Duration
}

type Notifier struct {
	baseURL    string
	cookie     *http.Cookie
	httpClient *http.Client
	mirror     *Mirror
	logger     *zap.Logger
}

func New(cfg Config, mirror *Mirror, logger *zap.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if mirror == nil {
		mirror = NewMirror()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var cookie *http.Cookie
	if cfg.Cookie != "" {
		name := cfg.CookieName
		if name == "" {
			name = "session_token"
		}
		cookie = &http.Cookie{Name: name, Value: cfg.Cookie}
	}

	return &Notifier{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cookie:     cookie,
		httpClient: &http.Client{Timeout: timeout},
		mirror:     mirror,
		logger:     logger,
	}
}

func (n *Notifier) Mirror() *Mirror {
	return n.mirror
}

// Refresh triggers POST /api/refresh-user. A non-success status is logged and
// swallowed; the mirror is left untouched in that case.
func (n *Notifier) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/refresh-user", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if n.cookie != nil {
		req.AddCookie(n.cookie)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		n.logger.Warn("failed to refresh session", zap.Int("status", resp.StatusCode))
		return nil
	}

	var payload model.RefreshUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	n.mirror.apply(payload.User)
	n.logger.Info("session updated", zap.String("user_id", payload.User.ID))
	return nil
}

// Reset clears the mirror after sign-out.
func (n *Notifier) Reset() {
	n.mirror.clear()
}
