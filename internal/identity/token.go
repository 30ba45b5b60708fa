package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var errNoUser = fmt.Errorf("%w: no user", common.ErrNotAuthenticated)

// Claims carries the subject (user id) and email of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GenerateToken signs an HS256 access token for user.
func GenerateToken(user models.User, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: user.Email,
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString and returns its user.
func ParseToken(tokenString string, secretKey []byte) (*models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNotAuthenticated, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", common.ErrNotAuthenticated)
	}
	return &models.User{ID: claims.Subject, Email: claims.Email}, nil
}

// Token authenticates with a fixed access token. It is re-verified on every
// call, so an expired token stops authenticating mid-process.
type Token struct {
	raw    string
	secret []byte
}

func NewToken(raw string, secret []byte) *Token {
	return &Token{raw: raw, secret: secret}
}

func (t *Token) CurrentUser(context.Context) (*models.User, error) {
	if t.raw == "" {
		return nil, errNoUser
	}
	if len(t.secret) == 0 {
		return nil, errors.Join(errNoUser, errors.New("token secret not configured"))
	}
	return ParseToken(t.raw, t.secret)
}
