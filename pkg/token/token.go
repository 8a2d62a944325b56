// Package token issues and validates the signed remember-me tokens
// behind the login form's "remember me" option. The token only carries
// the user id; the account status is re-checked against the database
// before a session is re-established from it.
package token

import (
	"time"

	"cariella/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// RememberCookieName is the name of the persistent remember-me cookie.
const RememberCookieName = "cariella_remember"

var (
	secret   []byte
	lifetime = 720 * time.Hour
)

// Initialize sets the signing key and token lifetime from configuration.
func Initialize(cfg *config.TokenConfig) {
	secret = []byte(cfg.SigningKey)
	if cfg.Lifetime > 0 {
		lifetime = cfg.Lifetime
	}
}

// Lifetime returns the configured token lifetime, used as the cookie
// max-age when the remember-me option is selected at login.
func Lifetime() time.Duration {
	return lifetime
}

// RememberClaims represents the claims carried by a remember-me token.
type RememberClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateRememberToken creates a signed remember-me token for a user.
func GenerateRememberToken(userID uint) (string, error) {
	claims := RememberClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ValidateRememberToken validates and parses a remember-me token.
func ValidateRememberToken(tokenString string) (*RememberClaims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &RememberClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(*RememberClaims); ok && t.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
