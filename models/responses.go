package models

// Response is the uniform JSON envelope returned by every API endpoint.
// Success reports whether the operation completed; Message carries a
// human-readable status or error description; Data holds the payload,
// omitted when there is none.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SessionResponse is the payload returned by successful verify and login
// calls: the signed session token plus the identity projection.
type SessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ListResponse is the payload of the entry listing endpoint.
type ListResponse struct {
	Entries []Entry `json:"entries"`
	Length  int     `json:"length"`
}
