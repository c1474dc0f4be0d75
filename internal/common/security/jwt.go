package security

import (
	"errors"
	"time"

	"huntserver/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(personID string) (string, error) {
	claims := jwt.MapClaims{
		"person_id": personID,
		"exp":       time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":       time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// GetPersonIDFromClaims extracts the person identity from verified claims.
func GetPersonIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["person_id"].(string)
	if !ok {
		return "", errors.New("person_id claim is missing or not a string")
	}
	return id, nil
}
