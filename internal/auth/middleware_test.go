package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"roomshare/backend/internal/models"
	"roomshare/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c), "role": Role(c)})
	})
	r.GET("/optional", OptionalMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c)})
	})
	r.GET("/landlords", Middleware(testSecret), RequireRole(models.RoleLandlord), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRequiresValidToken(t *testing.T) {
	r := newAuthedRouter()

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/protected", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/protected", "garbage").Code)

	token, err := jwt.GenerateToken(testSecret, 5, string(models.RoleTenant))
	require.NoError(t, err)
	w := doRequest(r, "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":5`)
	assert.Contains(t, w.Body.String(), `"role":"Tenant"`)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	r := newAuthedRouter()

	token, err := jwt.GenerateToken("other-secret", 5, string(models.RoleTenant))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/protected", token).Code)
}

func TestOptionalMiddlewareAllowsAnonymous(t *testing.T) {
	r := newAuthedRouter()

	w := doRequest(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":0`)

	token, err := jwt.GenerateToken(testSecret, 9, string(models.RoleLandlord))
	require.NoError(t, err)
	w = doRequest(r, "/optional", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":9`)
}

func TestRequireRole(t *testing.T) {
	r := newAuthedRouter()

	landlordToken, err := jwt.GenerateToken(testSecret, 1, string(models.RoleLandlord))
	require.NoError(t, err)
	tenantToken, err := jwt.GenerateToken(testSecret, 2, string(models.RoleTenant))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(r, "/landlords", landlordToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/landlords", tenantToken).Code)
}
