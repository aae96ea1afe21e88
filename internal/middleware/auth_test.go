package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipepdf/internal/types"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims *types.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTValidator(t *testing.T) {
	v := NewJWTValidator(testSecret)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testSecret, &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			ClientID:         "kitchen-app",
		})
		claims, err := v.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "kitchen-app", claims.ClientID)
	})

	t.Run("subject used as client id", func(t *testing.T) {
		token := signToken(t, testSecret, &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "batch-job"},
		})
		claims, err := v.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "batch-job", claims.ClientID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.ValidateToken(signToken(t, "other", &types.TokenClaims{ClientID: "x"}))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, testSecret, &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
			ClientID:         "x",
		})
		_, err := v.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware(NewJWTValidator(testSecret)))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ClientIDKey))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "bad format", header: "Token abc", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer abc", status: http.StatusUnauthorized},
		{
			name:   "valid",
			header: "Bearer " + signToken(t, testSecret, &types.TokenClaims{ClientID: "kitchen-app"}),
			status: http.StatusOK,
			body:   "kitchen-app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}
