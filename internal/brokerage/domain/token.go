package domain

// TokenTypeBearer is the token_type of every issued pair.
const TokenTypeBearer = "bearer"

// TokenPair is an access token and a refresh token issued together for the
// same subject and role snapshot. It is not persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int // access token lifetime in seconds
	Roles        []string
}
