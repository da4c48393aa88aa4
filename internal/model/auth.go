package model

import "time"

// Credentials is transient input for a single login attempt. Never persisted.
type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Claims are the fields read from a verified bearer token.
type Claims struct {
	SubjectID     string
	Username      string
	CreditBalance int64
}

// Session is the local session record materialized from upstream claims.
// Key identifies the record in the session store; ID is the upstream subject id.
type Session struct {
	Key             string    `json:"key"`
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	StartingCredits int64     `json:"startingCredits"`
	AccessToken     string    `json:"accessToken"`
	CreatedAt       time.Time `json:"createdAt"`
	RefreshedAt     time.Time `json:"refreshedAt"`
}

// User returns the part of the session exposed to the presentation layer.
func (s *Session) User() SessionUser {
	return SessionUser{
		ID:              s.ID,
		Username:        s.Username,
		StartingCredits: s.StartingCredits,
	}
}

type SessionUser struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	StartingCredits int64  `json:"startingCredits"`
}

// UpstreamUser is the payload of GET {API_URL}/user/refresh-session.
type UpstreamUser struct {
	ID       FlexibleID `json:"id"`
	Username string     `json:"username"`
	Credits  int64      `json:"credits"`
}
