// Command refresh-user asks a running gateway to refresh the session carried by
// the given cookie and prints the resulting client-side user state.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/saas-webapp/web/internal/config"
	"github.com/saas-webapp/web/internal/notifier"
	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()

	baseURL := flag.String("url", envOr("GATEWAY_URL", "http://localhost:8080"), "gateway base URL")
	cookieName := flag.String("cookie-name", envOr("SESSION_COOKIE_NAME", "session_token"), "session cookie name")
	cookie := flag.String("cookie", os.Getenv("SESSION_COOKIE"), "session cookie value")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	n := notifier.New(notifier.Config{
		BaseURL:    *baseURL,
		CookieName: *cookieName,
		Cookie:     *cookie,
		Timeout:    *timeout,
	}, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := n.Refresh(ctx); err != nil {
		logger.Error("refresh failed", zap.Error(err))
		os.Exit(1)
	}

	state, ok := n.Mirror().Snapshot()
	if !ok {
		fmt.Println("no session")
		os.Exit(2)
	}
	fmt.Printf("id=%s username=%s credits=%d\n", state.ID, state.Username, state.CreditBalance)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
