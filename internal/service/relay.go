package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saas-webapp/web/internal/client"
	"github.com/saas-webapp/web/internal/model"
	"go.uber.org/zap"
)

type loginBackend interface {
	IsConfigured() bool
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
}

type tokenDecoder interface {
	Decode(token string) (*model.Claims, error)
}

// CredentialRelay forwards credentials to the upstream login endpoint and
// adapts its response into verified claims.
type CredentialRelay struct {
	backend    loginBackend
	decoder    tokenDecoder
	extractors []TokenExtractor
	logger     *zap.Logger
}

func NewCredentialRelay(backend loginBackend, decoder tokenDecoder, extractors []TokenExtractor, logger *zap.Logger) *CredentialRelay {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialRelay{
		backend:    backend,
		decoder:    decoder,
		extractors: extractors,
		logger:     logger,
	}
}

func (r *CredentialRelay) Authenticate(ctx context.Context, creds model.Credentials) (string, *model.Claims, error) {
	if !r.backend.IsConfigured() {
		r.logger.Error("API_URL is not defined")
		return "", nil, fmt.Errorf("%w: API_URL is missing", ErrMisconfigured)
	}

	resp, err := r.backend.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		r.logger.Warn("login request failed", zap.Error(err))
		return "", nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		r.logger.Info("upstream rejected credentials", zap.String("username", creds.Username))
		return "", nil, ErrInvalidCredentials
	case resp.StatusCode >= http.StatusInternalServerError:
		r.logger.Warn("upstream login error", zap.Int("status", resp.StatusCode))
		return "", nil, fmt.Errorf("%w: login returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		r.logger.Info("upstream login refused", zap.Int("status", resp.StatusCode))
		return "", nil, ErrInvalidCredentials
	}

	token, source := r.extractToken(resp)
	if token == "" {
		r.logger.Warn("no token in login response", zap.Int("status", resp.StatusCode))
		return "", nil, ErrTokenMissing
	}

	claims, err := r.decoder.Decode(token)
	if err != nil {
		r.logger.Warn("token verification failed", zap.String("source", source), zap.Error(err))
		return "", nil, err
	}

	return token, claims, nil
}

func (r *CredentialRelay) extractToken(resp *client.LoginResponse) (string, string) {
	for _, ex := range r.extractors {
		if token, ok := ex.Extract(resp); ok {
			return token, ex.Name()
		}
	}
	return "", ""
}
