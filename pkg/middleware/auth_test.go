package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreamolight/Phone2/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.TokenExpiry = time.Hour
	return cfg
}

func setupProtectedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString("userID"),
			"username": c.GetString("username"),
		})
	})
	return router
}

func doAuthRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateToken(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken("user1", "alice", cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = GenerateToken("", "alice", cfg)
	assert.Error(t, err)

	_, err = GenerateToken("user1", "alice", nil)
	assert.Error(t, err)

	noSecret := testConfig()
	noSecret.JWT.Secret = ""
	_, err = GenerateToken("user1", "alice", noSecret)
	assert.Error(t, err)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testConfig()
	router := setupProtectedRouter(cfg)

	token, err := GenerateToken("user1", "alice", cfg)
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user1")
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupProtectedRouter(testConfig())

	w := doAuthRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := setupProtectedRouter(testConfig())

	w := doAuthRequest(router, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	router := setupProtectedRouter(testConfig())

	w := doAuthRequest(router, "Bearer not.a.token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	otherCfg := testConfig()
	otherCfg.JWT.Secret = "a-different-secret"
	token, err := GenerateToken("user1", "alice", otherCfg)
	require.NoError(t, err)

	router := setupProtectedRouter(testConfig())
	w := doAuthRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := testConfig()

	claims := &Claims{
		UserID:   "user1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	router := setupProtectedRouter(cfg)
	w := doAuthRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")
}

func TestAuthMiddleware_MissingClaims(t *testing.T) {
	cfg := testConfig()

	// A token without a user ID must be rejected even if it verifies
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	router := setupProtectedRouter(cfg)
	w := doAuthRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// As must one that never expires
	claims = &Claims{UserID: "user1"}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	w = doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
