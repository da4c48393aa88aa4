package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LoginResponse struct {
	User SessionUser `json:"user"`
}

type SessionResponse struct {
	User SessionUser `json:"user"`
}

type RefreshUserResponse struct {
	Message string      `json:"message"`
	User    SessionUser `json:"user"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}
