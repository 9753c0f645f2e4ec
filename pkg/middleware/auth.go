package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cinema-ticketing/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTAuth validates an HS256 bearer token issued by the cinema backend and
// puts the staff id (sub), role and raw token into the request context.
func JWTAuth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}); err != nil {
				logger.Warn("Rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
				if errors.Is(err, jwt.ErrTokenExpired) {
					utils.ResponseUnauthorized(w, "Token expired")
					return
				}
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			staffID := subject(claims["sub"])
			if staffID == "" {
				utils.ResponseUnauthorized(w, "Invalid token claims")
				return
			}
			role, _ := claims["role"].(string)

			ctx := utils.SetStaffContext(r.Context(), staffID, strings.ToLower(role))
			ctx = utils.SetTokenContext(ctx, raw)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after JWTAuth.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok || !allowed[role] {
				staffID, _ := utils.GetStaffIDFromContext(r.Context())
				logger.Warn("Role check: access denied",
					zap.String("staff_id", staffID),
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "Staff access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// subject accepts both string and numeric "sub" claims.
func subject(v any) string {
	switch sub := v.(type) {
	case string:
		return sub
	case float64:
		return strconv.FormatFloat(sub, 'f', -1, 64)
	default:
		return ""
	}
}
