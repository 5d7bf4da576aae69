package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/users"
)

const testSecret = "test-secret-key"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", JWTAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/admin", JWTAuth(testSecret), RequireRole(users.RoleAdmin, users.RoleMaster), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/fleet", RobotAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identifier": c.GetString("robot_identifier")})
	})
	return router
}

func userToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateUserToken(auth.Config{Secret: testSecret}, "11111111-1111-1111-1111-111111111111", "Maria", role)
	require.NoError(t, err)
	return token
}

func TestJWTAuthMissingHeader(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInvalidToken(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, users.RoleUser))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "11111111-1111-1111-1111-111111111111")
}

func TestRequireRoleForbidsReadOnlyUser(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, users.RoleUser))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, users.RoleAdmin))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRobotAuthRejectsUserToken(t *testing.T) {
	router := newAuthRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fleet", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, users.RoleAdmin))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRobotAuthAcceptsRobotToken(t *testing.T) {
	router := newAuthRouter(t)

	token, err := auth.GenerateRobotToken(auth.Config{Secret: testSecret}, "22222222-2222-2222-2222-222222222222", "R1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fleet", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "R1")
}
