package domain

// AuthToken is the response body for a successful authentication or refresh.
// The shape follows the OAuth2 token response: expires_in is whole seconds,
// refresh_token is omitted when refreshing is disabled for the user, and
// scope is always null since authorities travel inside the access token.
type AuthToken struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	Scope        *string `json:"scope"`
}

// TokenTypeBearer is the only token type this service issues.
const TokenTypeBearer = "bearer"
