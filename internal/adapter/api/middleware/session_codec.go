package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/pkg/clock"
)

const sessionIssuer = "furious-repair"

type sessionClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// SessionCodec signs session tokens into cookie values. The cookie only
// proves the token was issued here; the session store stays authoritative.
type SessionCodec struct {
	secret []byte
	clock  clock.Clock
}

func NewSessionCodec(secret string, clk clock.Clock) *SessionCodec {
	if clk == nil {
		clk = clock.Real()
	}
	return &SessionCodec{secret: []byte(secret), clock: clk}
}

func (s *SessionCodec) Encode(session *entity.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.Token,
		Role:      string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   session.SubjectID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies the cookie value and returns the session token inside it.
func (s *SessionCodec) Decode(value string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("session cookie has no session id")
	}
	return claims.SessionID, nil
}

func (s *SessionCodec) now() time.Time {
	return s.clock.Now()
}
