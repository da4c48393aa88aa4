package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saas-webapp/web/internal/model"
)

// TokenDecoder verifies upstream-issued bearer tokens with the shared secret.
// It never mints tokens.
type TokenDecoder struct {
	secret []byte
}

// upstreamClaims mirrors the payload the backend signs: id, username, credits, exp, jti.
type upstreamClaims struct {
	ID       *model.FlexibleID `json:"id"`
	Username *string           `json:"username"`
	Credits  *int64            `json:"credits"`
	jwt.RegisteredClaims
}

func NewTokenDecoder(secret string) (*TokenDecoder, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	return &TokenDecoder{secret: []byte(secret)}, nil
}

func (d *TokenDecoder) Decode(tokenStr string) (*model.Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalidToken
	}

	claims := &upstreamClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return d.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID == nil || claims.ID.String() == "" {
		return nil, fmt.Errorf("%w: id claim missing", ErrInvalidToken)
	}
	if claims.Username == nil || *claims.Username == "" {
		return nil, fmt.Errorf("%w: username claim missing", ErrInvalidToken)
	}

	var credits int64
	if claims.Credits != nil {
		credits = *claims.Credits
	}

	return &model.Claims{
		SubjectID:     claims.ID.String(),
		Username:      *claims.Username,
		CreditBalance: credits,
	}, nil
}
