package goidp

// TokenInfo is the introspection result for a token. Inactive results carry
// no other fields so callers cannot learn anything about tokens they do not
// own.
type TokenInfo struct {
	IsActive           bool          `json:"active"`
	TokenUsage         TokenTypeHint `json:"token_type,omitempty"`
	Scopes             string        `json:"scope,omitempty"`
	ClientID           string        `json:"client_id,omitempty"`
	Subject            string        `json:"sub,omitempty"`
	ExpiresAtTimestamp int           `json:"exp,omitempty"`
}
