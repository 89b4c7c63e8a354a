package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single failure mode for download-token
// verification. Tampered, malformed and expired tokens all collapse into
// it; callers redirect to login without distinguishing the cause.
var ErrInvalidToken = errors.New("invalid or expired download token")

// TokenService issues and verifies signed download tokens. Tokens are
// stateless bearer capabilities: multi-use within their window and not
// revocable before expiry. That is an accepted property of the design,
// there is no server-side token state.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

type downloadClaims struct {
	FileID uint `json:"file_id"`
	jwt.RegisteredClaims
}

// Issue creates a token granting download access to exactly one file.
func (s *TokenService) Issue(fileID uint) (string, error) {
	return s.issueAt(fileID, time.Now())
}

func (s *TokenService) issueAt(fileID uint, now time.Time) (string, error) {
	claims := downloadClaims{
		FileID: fileID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks the signature and age of a token and returns the file ID
// it grants access to. The age limit is enforced against the embedded
// issuance timestamp, not an expiry claim.
func (s *TokenService) Verify(tokenStr string, maxAge time.Duration) (uint, error) {
	var claims downloadClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.FileID == 0 {
		return 0, ErrInvalidToken
	}
	if time.Since(claims.IssuedAt.Time) > maxAge {
		return 0, ErrInvalidToken
	}
	return claims.FileID, nil
}
