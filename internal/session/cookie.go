package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the signed session token.
	CookieName = "finweb_session"
	// EmailCookieName mirrors the logged-in email for the browser; it is never trusted.
	EmailCookieName = "userEmail"

	issuer = "finweb"
)

// Claims is the payload of a session cookie.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookies with HS256.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Encode signs a token for s that expires with the session.
func (c *Codec) Encode(s Session) (string, error) {
	claims := Claims{
		SessionID: s.ID,
		Email:     s.User.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			Issuer:    issuer,
			Subject:   s.User.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and returns its claims.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
