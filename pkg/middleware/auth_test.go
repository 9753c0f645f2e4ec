package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-ticketing/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "counter-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func staffEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, _ := utils.GetStaffIDFromContext(r.Context())
		role, _ := utils.GetRoleFromContext(r.Context())
		token, _ := utils.GetTokenFromContext(r.Context())
		w.Header().Set("X-Staff", staffID)
		w.Header().Set("X-Role", role)
		w.Header().Set("X-Token", token)
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuth(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":  "staff-1",
		"role": "Staff",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	numericSub := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":  float64(42),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "staff-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
		"sub": "staff-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noExpiry := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "staff-1",
	})
	noSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongAlg := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
		"sub": "staff-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantStaff  string
		wantRole   string
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantStaff: "staff-1", wantRole: "staff"},
		{name: "numeric subject", header: "Bearer " + numericSub, wantStatus: http.StatusOK, wantStaff: "42", wantRole: "admin"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized},
		{name: "no expiry", header: "Bearer " + noExpiry, wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubject, wantStatus: http.StatusUnauthorized},
		{name: "wrong algorithm", header: "Bearer " + wrongAlg, wantStatus: http.StatusUnauthorized},
	}

	handler := JWTAuth(testSecret, zap.NewNop())(staffEcho())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/counter/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantStaff, rec.Header().Get("X-Staff"))
				assert.Equal(t, tt.wantRole, rec.Header().Get("X-Role"))
				assert.NotEmpty(t, rec.Header().Get("X-Token"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(zap.NewNop(), utils.RoleStaff, utils.RoleAdmin)(staffEcho())

	for role, want := range map[string]int{
		"staff":    http.StatusOK,
		"admin":    http.StatusOK,
		"customer": http.StatusForbidden,
		"":         http.StatusForbidden,
	} {
		t.Run("role="+role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(utils.SetStaffContext(req.Context(), "staff-1", role))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code)
		})
	}
}
