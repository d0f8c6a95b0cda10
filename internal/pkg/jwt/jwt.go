package jwt

import (
	"errors"
	"slices"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const mediaAudience = "media-stream"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrPathMismatch = errors.New("token not valid for this path")
)

type Service struct {
	secret   []byte
	ttl      time.Duration
	mediaTTL time.Duration
}

// Claims are the access-token claims issued by the identity provider.
// The user id travels in "sub".
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

// MediaClaims bind a user to one storage path for a short time.
type MediaClaims struct {
	Path string `json:"path"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl, mediaTTL time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		ttl:      ttl,
		mediaTTL: mediaTTL,
	}
}

// GenerateToken issues an access token. Production tokens come from the
// identity provider; this is used by tooling and tests sharing its secret.
func (s *Service) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, s.keyFunc, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	// media tokens carry sub too; they only open the stream they were minted for
	if claims.Subject == "" || slices.Contains(claims.Audience, mediaAudience) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateMediaToken mints a token for streaming storagePath as userID.
func (s *Service) GenerateMediaToken(userID, storagePath string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.mediaTTL)
	claims := MediaClaims{
		Path: storagePath,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Audience:  jwtlib.ClaimStrings{mediaAudience},
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateMediaToken checks signature, expiry, audience and that the token
// was minted for storagePath.
func (s *Service) ValidateMediaToken(tokenStr, storagePath string) (*MediaClaims, error) {
	claims := &MediaClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, s.keyFunc,
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithAudience(mediaAudience),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Path != storagePath {
		return nil, ErrPathMismatch
	}
	return claims, nil
}

func (s *Service) keyFunc(*jwtlib.Token) (any, error) {
	return s.secret, nil
}
