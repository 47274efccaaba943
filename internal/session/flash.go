// Package session carries one-shot flash messages across a redirect in a
// cookie signed with the session secret.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookie = "flash"
	flashTTL    = 5 * time.Minute
)

// Claims represents the flash cookie payload
type Claims struct {
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

type Flasher struct {
	secret []byte
}

func NewFlasher(secret string) (*Flasher, error) {
	if secret == "" {
		return nil, errors.New("session secret not set")
	}
	return &Flasher{secret: []byte(secret)}, nil
}

// Set stores msg for the next request from this client.
func (f *Flasher) Set(w http.ResponseWriter, msg string) error {
	now := time.Now()
	claims := Claims{
		Message: msg,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending flash message, if any, and clears it. Tampered or
// expired cookies are discarded silently.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	claims, err := f.parse(c.Value)
	if err != nil {
		return ""
	}
	return claims.Message
}

func (f *Flasher) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return f.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired flash")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
