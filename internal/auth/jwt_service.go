package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DevTokenExpiry is the lifetime of tokens minted by IssueToken.
const DevTokenExpiry = 12 * time.Hour

var (
	// ErrInvalidToken is returned when a session token fails verification.
	ErrInvalidToken = errors.New("invalid or expired session token")
	// ErrTokenRevoked is returned when a session token was signed out.
	ErrTokenRevoked = errors.New("session token revoked")
)

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	// ID is the provider's user id; employees reference it as auth id.
	ID        string
	TokenID   string
	ExpiresAt time.Time
}

// Claims represents the session token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService verifies provider-issued session tokens.
type JWTService struct {
	secret []byte
	issuer string
}

// NewJWTService creates a verifier for HS256 tokens signed with secret.
// When issuer is non-empty the iss claim must match it.
func NewJWTService(secret, issuer string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// IssueToken signs a session token for authID. The identity provider does
// this in production; the seed command uses it for local sign-in.
func (s *JWTService) IssueToken(authID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   authID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a session token and returns the caller identity.
func (s *JWTService) ValidateToken(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := &Identity{ID: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
