// 외부 인증 백엔드와 HTTP 통신하는 클라이언트 정의
//
// 환경변수:
//   - API_URL: 백엔드 base URL (예: http://saas-backend:8000)
//   - API_TIMEOUT: 요청 타임아웃 (기본 10s)
//
// 호출하는 엔드포인트:
//   - POST /login (form-encoded username/password)
//   - GET /user/refresh-session (Bearer 토큰)
//   - POST /logout (Bearer 토큰)

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saas-webapp/web/internal/config"
	"github.com/saas-webapp/web/internal/model"
)

const defaultBackendTimeout = 10 * time.Second

// 응답 바디 최대 크기 (1 MiB)
const maxBodyBytes = 1 << 20

// BackendClient 구조체 정의
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// LoginResponse - /login 응답 원본 (토큰 추출은 service 레이어에서 수행)
type LoginResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError - 백엔드가 2xx 이외의 상태 코드를 반환한 경우
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d", e.Endpoint, e.StatusCode)
}

// BackendClient 객체 생성
func NewBackendClient(cfg config.BackendConfig) *BackendClient {
	timeout := defaultBackendTimeout
	if parsed, err := time.ParseDuration(cfg.Timeout); err == nil && parsed > 0 {
		timeout = parsed
	}

	return &BackendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// API_URL 설정 여부 체크
func (c *BackendClient) IsConfigured() bool {
	return c.baseURL != ""
}

// POST /login - 상태 코드와 관계없이 응답 원본을 반환 (전송 실패 시에만 에러)
func (c *BackendClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &LoginResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// GET /user/refresh-session - 최신 사용자 정보 조회
func (c *BackendClient) RefreshSession(ctx context.Context, accessToken string) (*model.UpstreamUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/refresh-session", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: "/user/refresh-session", StatusCode: resp.StatusCode, Body: string(body)}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty refresh response")
	}

	var user *model.UpstreamUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	// null 바디 또는 id/username 누락 시 세션을 덮어쓰지 않도록 거부
	if user == nil {
		return nil, fmt.Errorf("empty refresh response")
	}
	if user.ID.String() == "" || user.Username == "" {
		return nil, fmt.Errorf("refresh response missing id or username")
	}

	return user, nil
}

// POST /logout - 백엔드 토큰 만료 요청
func (c *BackendClient) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send logout request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: "/logout", StatusCode: resp.StatusCode}
	}
	return nil
}
