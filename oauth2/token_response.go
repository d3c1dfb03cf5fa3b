package oauth2

// TokenResponse is the body of a successful token endpoint call.
type TokenResponse struct {
	// AccessToken is the opaque bearer token sent with every API call.
	AccessToken string `json:"access_token"`

	// ExpiresIn is the lifetime in seconds. The client does not track it;
	// expiry is discovered from a rejected request.
	ExpiresIn int `json:"expires_in"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// Scope is the granted scope, usually empty.
	Scope string `json:"scope"`
}

// ErrorResponse is the body of a failed token endpoint or API call.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
