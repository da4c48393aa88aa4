package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/saas-webapp/web/internal/client"
	"github.com/saas-webapp/web/internal/model"
	"go.uber.org/zap"
)

// sessionStore - 세션 저장소 인터페이스 (memory, redis, postgres)
type sessionStore interface {
	Save(ctx context.Context, sess *model.Session) error
	Load(ctx context.Context, key string) (*model.Session, error)
	Delete(ctx context.Context, key string) error
}

type refreshBackend interface {
	RefreshSession(ctx context.Context, accessToken string) (*model.UpstreamUser, error)
	Logout(ctx context.Context, accessToken string) error
}

type credentialRelay interface {
	Authenticate(ctx context.Context, creds model.Credentials) (string, *model.Claims, error)
}

// SessionService materializes sessions from relayed claims and keeps them
// current against the upstream whoami endpoint.
type SessionService struct {
	relay   credentialRelay
	backend refreshBackend
	store   sessionStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewSessionService(relay credentialRelay, backend refreshBackend, store sessionStore, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		relay:   relay,
		backend: backend,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SessionService) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	token, claims, err := s.relay.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &model.Session{
		Key:             uuid.NewString(),
		ID:              claims.SubjectID,
		Username:        claims.Username,
		StartingCredits: claims.CreditBalance,
		AccessToken:     token,
		CreatedAt:       now,
		RefreshedAt:     now,
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("session created", zap.String("user_id", sess.ID), zap.String("username", sess.Username))
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, key string) (*model.Session, error) {
	if key == "" {
		return nil, ErrUnauthorized
	}
	return s.store.Load(ctx, key)
}

// Refresh re-reads the user from upstream with the held access token. The token
// itself is carried forward unchanged.
func (s *SessionService) Refresh(ctx context.Context, sess *model.Session) (*model.Session, error) {
	if sess == nil || sess.AccessToken == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.backend.RefreshSession(ctx, sess.AccessToken)
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusUnauthorized {
				return nil, ErrUnauthorized
			}
			s.logger.Warn("refresh-session returned error status", zap.Int("status", statusErr.StatusCode))
			return nil, fmt.Errorf("%w: status %d", ErrRefreshFailed, statusErr.StatusCode)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			s.logger.Warn("refresh-session request failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		s.logger.Warn("refresh-session response invalid", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	updated := *sess
	updated.ID = user.ID.String()
	updated.Username = user.Username
	updated.StartingCredits = user.Credits
	updated.RefreshedAt = s.now()

	if err := s.store.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &updated, nil
}

// SignOut destroys the local session. The upstream logout call is best effort.
func (s *SessionService) SignOut(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return nil
	}

	if sess.AccessToken != "" {
		if err := s.backend.Logout(ctx, sess.AccessToken); err != nil {
			s.logger.Warn("upstream logout failed", zap.Error(err))
		}
	}

	if err := s.store.Delete(ctx, sess.Key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
