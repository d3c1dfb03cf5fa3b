package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// ClientCredentialsGrant exchanges a client id and secret directly for an access token.
	// Token request includes: client_id, client_secret, grant_type
	// Returns: access_token (no refresh_token)
	ClientCredentialsGrant GrantType = "client_credentials"
)

// TokenType is always "bearer" for DocBuild tokens.
const TokenType = "bearer"

// Token endpoint form parameters.
const (
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamGrantType    = "grant_type"
	ParamAccessToken  = "access_token"
)

// Error descriptions the API returns for rejected bearer tokens. They are
// matched literally.
const (
	TokenExpiredDescription = "The access token provided has expired."
	TokenInvalidDescription = "The access token provided is invalid."
)

// Error codes used in ErrorResponse.Error.
const (
	ErrorInvalidRequest = "invalid_request"
	ErrorInvalidClient  = "invalid_client"
	ErrorInvalidGrant   = "invalid_grant"
	ErrorUnsupported    = "unsupported_grant_type"
)
