package types

type LoginRequest struct {
	Tag string `json:"tag"`
}

type LoginResponse struct {
	OK       bool      `json:"ok"`
	Known    bool      `json:"known"`
	Message  string    `json:"message,omitempty"`
	Identity *Identity `json:"identity,omitempty"`
	Session  *Session  `json:"session,omitempty"`

	// ReplacedSession is the prior active session this login closed, if any.
	ReplacedSession *Session `json:"replaced_session,omitempty"`

	ServerTime string `json:"server_time"`
}
