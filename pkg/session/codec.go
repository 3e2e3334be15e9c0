// Package session implements the credential/token lifecycle: verifying a
// login, issuing signed access/refresh token pairs, rotating single-use
// refresh tokens against a durable store, and revoking them on logout.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningContext is an immutable secret + lifetime pair. Access and refresh
// tokens use separate contexts so possession of one kind can never forge
// the other.
type SigningContext struct {
	Secret []byte
	TTL    time.Duration
}

// Issue signs an HS256 token for subject with issued-at now and expiry
// now+TTL. The jti claim carries a random UUID so two tokens for the same
// subject issued within the same second still differ.
func Issue(subject string, sc SigningContext) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sc.TTL)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(sc.Secret)
}

// Decode verifies signature and expiry and returns the subject and expiry.
// Bad signature, wrong algorithm, malformed payload, missing subject and
// expired token all come back as ErrInvalidToken.
func Decode(tokenString string, sc SigningContext) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return sc.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}
