package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"hotelbook/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller behind a request.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

const anonymousUser = "anonymous"

// HTTPAuth verifies HMAC-signed bearer tokens and rate limits per caller.
type HTTPAuth struct {
	cfg     config.APIAuthConfig
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{cfg: cfg.Auth, limiter: newRateLimiter(cfg.RateLimit)}
}

// authenticate extracts the caller. With auth disabled every request is an
// anonymous administrator, which is only meant for local runs.
func (a *HTTPAuth) authenticate(r *http.Request) (Identity, error) {
	if !a.cfg.Enabled {
		return Identity{UserID: anonymousUser, Role: a.cfg.AdminRole}, nil
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, errMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !tok.Valid {
		return Identity{}, errInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, errInvalidToken
	}
	role, _ := claims["role"].(string)
	return Identity{UserID: sub, Role: role}, nil
}

func (a *HTTPAuth) isAdmin(id Identity) bool {
	return id.Role != "" && id.Role == a.cfg.AdminRole
}

// RequireUser lets through any authenticated caller.
func (a *HTTPAuth) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return a.require(false, next)
}

// RequireAdmin lets through only callers whose role claim equals the admin role.
func (a *HTTPAuth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.require(true, next)
}

func (a *HTTPAuth) require(admin bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="hotelbook"`)
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		if admin && !a.isAdmin(id) {
			writeError(w, http.StatusForbidden, "forbidden", "administrator role required")
			return
		}
		if !a.limiter.Allow("user:" + id.UserID) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), id)))
	}
}

// Public rate limits anonymous endpoints by client address.
func (a *HTTPAuth) Public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow("ip:" + clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}
