package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/L4er70/ContactBook/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const ISSUER = "contactbook"

// HashCost is the bcrypt cost used for new password hashes.
var HashCost = 14

type ContactBookTokenClaims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	jwt.StandardClaims
}

// HasRole reports whether the token was issued to a user holding one of roles.
func (claims *ContactBookTokenClaims) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(claims.Role, role) {
			return true
		}
	}
	return false
}

func NewTokenClaims(userID uint, firstName, lastName, role string, ttl time.Duration) ContactBookTokenClaims {
	now := time.Now()
	return ContactBookTokenClaims{
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			Issuer:    ISSUER,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims ContactBookTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyPair.Kid

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*ContactBookTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ContactBookTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %w", err)
	}

	tokenClaims, ok := token.Claims.(*ContactBookTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to ContactBookTokenClaims")
	}

	return tokenClaims, nil
}
