package common

const (
	// SessionTokenParamName is the form/query parameter that carries a
	// first-party session token.
	SessionTokenParamName = "omh_auth_token"

	// BearerTokenType is reported as token_type in token responses.
	BearerTokenType = "Bearer"
)
