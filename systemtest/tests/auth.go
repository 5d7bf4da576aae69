package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/users"
)

func TestHealthCheck(t *testing.T, router *gin.Engine) {
	rr := doJSON(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestAuth(t *testing.T, router *gin.Engine, jwtSecret string) {
	t.Run("master login", func(t *testing.T) {
		body := dto.LoginRequest{Login: "root@sia.local", Password: "changeme123"}
		rr := doJSON(router, "POST", "/api/auth/login", body)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, users.RoleMaster, resp.User.Role)

		claims, err := auth.ValidateToken(jwtSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.SubjectUser, claims.Kind)
		assert.Equal(t, users.RoleMaster, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := dto.LoginRequest{Login: "root@sia.local", Password: "wrongpassword"}
		rr := doJSON(router, "POST", "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown login", func(t *testing.T) {
		body := dto.LoginRequest{Login: "nobody@sia.local", Password: "changeme123"}
		rr := doJSON(router, "POST", "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/robots", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("refresh issues a fresh token", func(t *testing.T) {
		token := login(t, router, "root@sia.local", "changeme123")
		rr := doJSONWithAuth(router, "POST", "/api/auth/refresh", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		claims, err := auth.ValidateToken(jwtSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, users.RoleMaster, claims.Role)
	})

	t.Run("refresh without token", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/auth/refresh", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserManagement(t *testing.T, router *gin.Engine) {
	masterToken := login(t, router, "root@sia.local", "changeme123")

	t.Run("create operator", func(t *testing.T) {
		body := dto.CreateUserRequest{
			Name:     "Joana Operadora",
			Email:    "joana@sia.local",
			Role:     users.RoleUser,
			Password: "senhaforte1",
		}
		rr := doJSONWithAuth(router, "POST", "/api/users", body, masterToken)
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, users.RoleUser, resp.Role)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := dto.CreateUserRequest{
			Name:     "Joana Duplicada",
			Email:    "joana@sia.local",
			Role:     users.RoleUser,
			Password: "senhaforte1",
		}
		rr := doJSONWithAuth(router, "POST", "/api/users", body, masterToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("plain user cannot manage users", func(t *testing.T) {
		operatorToken := login(t, router, "joana@sia.local", "senhaforte1")

		rr := doJSONWithAuth(router, "GET", "/api/users", nil, operatorToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = doJSONWithAuth(router, "POST", "/api/users/common", dto.CreateCommonUserRequest{
			Name: "Intruso Indevido", Email: "intruso@sia.local", Password: "senhaforte1",
		}, operatorToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin manages common users but not peers", func(t *testing.T) {
		body := dto.CreateUserRequest{
			Name:     "Carlos Administrador",
			Email:    "carlos@sia.local",
			Role:     users.RoleAdmin,
			Password: "senhaforte1",
		}
		rr := doJSONWithAuth(router, "POST", "/api/users", body, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		adminToken := login(t, router, "carlos@sia.local", "senhaforte1")

		// Role is forced to Usuario no matter what the caller intends.
		rr = doJSONWithAuth(router, "POST", "/api/users/common", dto.CreateCommonUserRequest{
			Name:     "Pedro Comum",
			Email:    "pedro@sia.local",
			Password: "senhaforte1",
		}, adminToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		var created dto.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, users.RoleUser, created.Role)

		rr = doJSONWithAuth(router, "GET", "/api/users", nil, adminToken)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "pedro@sia.local")

		// Only Master mints Admins.
		rr = doJSONWithAuth(router, "POST", "/api/users", dto.CreateUserRequest{
			Name:     "Outro Admin",
			Email:    "outro@sia.local",
			Role:     users.RoleAdmin,
			Password: "senhaforte1",
		}, adminToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = doJSONWithAuth(router, "DELETE", "/api/users/"+created.ID, nil, adminToken)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("read-only operator cannot issue writes", func(t *testing.T) {
		operatorToken := login(t, router, "joana@sia.local", "senhaforte1")
		body := dto.CreateWarehouseRequest{
			Code: "G-NOPE", Name: "Nao Pode", Levels: "A,B",
			Cities: 1, DistrictsPerCity: 1, StreetsPerDistrict: 1, BuildingsPerStreet: 1,
		}
		rr := doJSONWithAuth(router, "POST", "/api/warehouses", body, operatorToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	rr := doJSON(router, "POST", "/api/auth/login", dto.LoginRequest{Login: email, Password: password})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	return doJSONWithAuth(router, method, path, body, "")
}

func doJSONWithAuth(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
