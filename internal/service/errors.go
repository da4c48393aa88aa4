package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTokenMissing        = errors.New("token missing")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRefreshFailed       = errors.New("refresh failed")
	ErrMisconfigured       = errors.New("auth config invalid")
)
