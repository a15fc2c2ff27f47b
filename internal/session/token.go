package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rfaguiar/manifestops/internal/common"
)

// Claims carries the standard JWT claims plus the operator id.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID string
}

// GenerateToken signs a session token for the operator (HS256).
func GenerateToken(operatorID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		OperatorID: operatorID,
	})

	return token.SignedString(secretKey)
}

// OperatorIDFromToken verifies a token and extracts the operator id.
func OperatorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.OperatorID, nil
}
