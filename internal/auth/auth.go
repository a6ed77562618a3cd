// Package auth turns a bearer token into the requesting user and carries
// that user through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dwikikusuma/nomino/pkg/httpx"
	"github.com/dwikikusuma/nomino/pkg/logger"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// User is the identity every order operation receives explicitly.
type User struct {
	ID      string
	IsStaff bool
	Address string
}

type Claims struct {
	IsStaff bool   `json:"is_staff"`
	Address string `json:"address,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (v *Verifier) Verify(token string) (User, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return User{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return User{
		ID:      claims.Subject,
		IsStaff: claims.IsStaff,
		Address: claims.Address,
	}, nil
}

// Issue signs a token for u. Used by tests and local tooling.
func (v *Verifier) Issue(u User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		IsStaff: u.IsStaff,
		Address: u.Address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}

		u, err := v.Verify(raw)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
			return
		}

		ctx := logger.WithAttrs(WithUser(r.Context(), u), slog.String("user_id", u.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
