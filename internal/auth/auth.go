package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the actor triple carried by access-token claims. An
// empty ID means unauthenticated; the stores reject such writes.
type Identity struct {
	ID   string
	Name string
	Role string
}

type Authenticator interface {
	GenerateTokens(id Identity) (string, string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
	ValidateRefreshToken(token string) (*jwt.Token, error)
}
