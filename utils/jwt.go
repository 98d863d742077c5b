package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback; production must set JWT_SECRET.
		secret = "kitchen-queue-dev-secret"
	}
	jwtSecret = []byte(secret)
}

// Claims identifies an authenticated actor. Chefs carry both ids; owner
// accounts carry UserID with RestaurantID zero.
type Claims struct {
	ChefID       uint   `json:"chef_id,omitempty"`
	UserID       uint   `json:"user_id,omitempty"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateChefToken(chefID, restaurantID uint) (string, error) {
	claims := Claims{
		ChefID:       chefID,
		RestaurantID: restaurantID,
		Role:         "chef",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func GenerateOwnerToken(userID uint) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
