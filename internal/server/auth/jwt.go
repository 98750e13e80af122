// Package auth turns bearer credentials into verified subjects and back.
// Tokens are HS256 JWTs whose subject is the user's email.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries only registered claims; Subject holds the email.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for subject that expires after validityDuration.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject.
//
// Failures are reported as common.ErrMalformedToken (not a JWT at all),
// common.ErrTokenExpired or common.ErrInvalidToken. When a token is both
// expired and badly signed, expiry wins.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", classify(tokenString, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

func classify(tokenString string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired), expiredUnverified(tokenString):
		return common.ErrTokenExpired
	default:
		return common.ErrInvalidToken
	}
}

// expiredUnverified reads exp without checking the signature.
func expiredUnverified(tokenString string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
