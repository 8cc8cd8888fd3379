package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"scentbase-backend/pkg/auth"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
)

// Authenticator guards routes that require a verified identity. Both
// limiters are per-minute sliding windows; the IP window is checked before
// the token is even parsed.
type Authenticator struct {
	verifier    *auth.JWTVerifier
	ipLimiter   *auth.IPRateLimiter
	userLimiter *auth.UserRateLimiter
	logger      *zap.Logger
}

// NewAuthenticator creates the authentication middleware
func NewAuthenticator(verifier *auth.JWTVerifier, perIP, perUser int, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		verifier:    verifier,
		ipLimiter:   auth.NewIPRateLimiter(perIP),
		userLimiter: auth.NewUserRateLimiter(perUser),
		logger:      logger,
	}
}

// Require rejects requests without a valid bearer token
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		allowed, _ := a.ipLimiter.Allow(r.Context(), clientIP)
		if !allowed {
			common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}

		token := extractToken(r)
		if token == "" {
			respondUnauthorized(w, "missing authentication token")
			return
		}

		claims, err := a.verifier.Verify(token)
		if err != nil {
			a.logger.Warn("Invalid token",
				zap.Error(err),
				zap.String("ip", clientIP),
				zap.String("path", r.URL.Path),
			)

			switch err {
			case auth.ErrExpiredToken:
				respondUnauthorized(w, "token has expired")
			case auth.ErrInvalidSignature:
				respondUnauthorized(w, "invalid token signature")
			default:
				respondUnauthorized(w, "invalid token")
			}
			return
		}

		allowed, _ = a.userLimiter.Allow(r.Context(), claims.UserID)
		if !allowed {
			common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "user rate limit exceeded")
			return
		}

		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return authHeader
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), message)
}
