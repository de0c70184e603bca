package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID    int    `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "EuroDoor-Secret"
	}
	return secret
}

func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 12
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerate(employeeID int, role string, email string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:    employeeID,
		Role:  role,
		Email: email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(TokenLifespan()).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
