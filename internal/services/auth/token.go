package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
	"github.com/mcoot/rpgroster-go/internal/model"
)

// Issuer is the iss claim on every token
const Issuer = "rpg-roster-api"

// Claims is the token payload
type Claims struct {
	UserID   model.UserID `json:"userId"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func newTokenIssuer(secret []byte, ttl time.Duration, clock clock.Clock) *tokenIssuer {
	return &tokenIssuer{secret: secret, ttl: ttl, clock: clock}
}

func (t *tokenIssuer) issue(claims Claims) (string, error) {
	now := t.clock.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    Issuer,
		Subject:   string(claims.UserID),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *tokenIssuer) verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
