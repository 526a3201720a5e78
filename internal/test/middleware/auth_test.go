package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{JWTSecret: testSecret, CookieName: "session_token"}
}

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "64f000000000000000000001",
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func authTestRouter(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := append([]gin.HandlerFunc{middleware.AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := c.Get(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestAuthRequired_NoTokenIsUnauthorized(t *testing.T) {
	router := authTestRouter(testConfig())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_GarbageTokenIsUnauthorized(t *testing.T) {
	router := authTestRouter(testConfig())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "not-a-jwt"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_WrongSecretIsUnauthorized(t *testing.T) {
	router := authTestRouter(testConfig())
	token := signTestToken(t, "other-secret", validClaims("customer"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_ExpiredTokenIsUnauthorized(t *testing.T) {
	router := authTestRouter(testConfig())
	claims := validClaims("customer")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signTestToken(t, testSecret, claims)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_MissingSubjectIsUnauthorized(t *testing.T) {
	router := authTestRouter(testConfig())
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_ValidCookiePasses(t *testing.T) {
	router := authTestRouter(testConfig())
	token := signTestToken(t, testSecret, validClaims("customer"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "64f000000000000000000001")
}

func TestAuthRequired_BearerHeaderFallbackPasses(t *testing.T) {
	router := authTestRouter(testConfig())
	token := signTestToken(t, testSecret, validClaims("customer"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles_BlocksAndAllowsByRole(t *testing.T) {
	cfg := testConfig()
	router := authTestRouter(cfg, middleware.RequireRoles(models.RoleAdmin))

	customer := signTestToken(t, testSecret, validClaims("customer"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: customer})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := signTestToken(t, testSecret, validClaims("admin"))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: admin})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func vendorClaims(vendorType string, approved bool) jwt.MapClaims {
	claims := validClaims("vendor")
	claims["vendor_type"] = vendorType
	claims["approved"] = approved
	return claims
}

func TestRequireAdminOrApprovedShopVendor_AdmitsAdmin(t *testing.T) {
	router := authTestRouter(testConfig(), middleware.RequireAdminOrApprovedShopVendor())
	token := signTestToken(t, testSecret, validClaims("admin"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminOrApprovedShopVendor_AdmitsApprovedShopVendor(t *testing.T) {
	router := authTestRouter(testConfig(), middleware.RequireAdminOrApprovedShopVendor())
	token := signTestToken(t, testSecret, vendorClaims("shop", true))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminOrApprovedShopVendor_BlocksOtherVendorTypes(t *testing.T) {
	router := authTestRouter(testConfig(), middleware.RequireAdminOrApprovedShopVendor())
	token := signTestToken(t, testSecret, vendorClaims("bird_services", false))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminOrApprovedShopVendor_BlocksUnapprovedShopVendor(t *testing.T) {
	router := authTestRouter(testConfig(), middleware.RequireAdminOrApprovedShopVendor())
	token := signTestToken(t, testSecret, vendorClaims("shop", false))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminOrApprovedShopVendor_BlocksCustomers(t *testing.T) {
	router := authTestRouter(testConfig(), middleware.RequireAdminOrApprovedShopVendor())
	token := signTestToken(t, testSecret, validClaims("customer"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuth_AnonymousRequestPasses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", middleware.OptionalAuth(testConfig()), func(c *gin.Context) {
		_, authed := c.Get(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"authed": authed})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/open", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":false`)
}

func TestOptionalAuth_ValidTokenSetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", middleware.OptionalAuth(testConfig()), func(c *gin.Context) {
		userID, _ := c.Get(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	token := signTestToken(t, testSecret, validClaims("customer"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "64f000000000000000000001")
}
