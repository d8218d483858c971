package userhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"auctionhouse/internal/services/user"
	"auctionhouse/internal/store/memstore"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := user.NewUserService(memstore.New(), "test-secret-0123", time.Hour, "admin@example.com")
	router := gin.New()
	New(users).Register(router.Group("/api/users"))
	return router
}

func post(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	router := newRouter(t)
	creds := CredentialsBody{Email: "alice@example.com", Password: "hunter2hunter2"}

	w := post(t, router, "/api/users/register", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.Equal(t, "alice@example.com", reg.Email)
	require.Equal(t, "bidder", reg.Role)
	require.NotEmpty(t, reg.Token)

	// Re-registering the same email conflicts.
	w = post(t, router, "/api/users/register", creds)
	require.Equal(t, http.StatusConflict, w.Code)

	w = post(t, router, "/api/users/login", creds)
	require.Equal(t, http.StatusOK, w.Code)
	var login AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.Equal(t, reg.ID, login.ID)
	require.NotEmpty(t, login.Token)

	w = post(t, router, "/api/users/login", CredentialsBody{Email: creds.Email, Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newRouter(t)

	// Binding rejects a malformed email.
	w := post(t, router, "/api/users/register", CredentialsBody{Email: "not-an-email", Password: "hunter2hunter2"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The service rejects short passwords.
	w = post(t, router, "/api/users/register", CredentialsBody{Email: "bob@example.com", Password: "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEmailGetsAdminRole(t *testing.T) {
	router := newRouter(t)

	w := post(t, router, "/api/users/register", CredentialsBody{Email: "admin@example.com", Password: "hunter2hunter2"})
	require.Equal(t, http.StatusCreated, w.Code)
	var reg AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.Equal(t, "admin", reg.Role)
}
