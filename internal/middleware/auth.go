package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/models"
)

const (
	UserIDKey         = "user_id"
	UserRoleKey       = "user_role"
	UserVendorTypeKey = "user_vendor_type"
	UserApprovedKey   = "user_approved"
)

// tokenFromRequest prefers the session cookie and falls back to a bearer
// header, which keeps non-browser clients working.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) bool {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return false
	}
	c.Set(UserIDKey, sub)
	if role, ok := claims["role"].(string); ok {
		c.Set(UserRoleKey, role)
	}
	if vendorType, ok := claims["vendor_type"].(string); ok {
		c.Set(UserVendorTypeKey, vendorType)
	}
	if approved, ok := claims["approved"].(bool); ok {
		c.Set(UserApprovedKey, approved)
	}
	return true
}

// AuthRequired rejects requests without a valid session token.
func AuthRequired(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c, cfg.CookieName)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
			return
		}

		claims, err := parseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid or expired session"})
			return
		}
		if !setIdentity(c, claims) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid session claims"})
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is present and lets the
// request through either way. Endpoints like the homepage personalize when
// they can.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c, cfg.CookieName); tokenString != "" {
			if claims, err := parseToken(tokenString, cfg.JWTSecret); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdminOrApprovedShopVendor guards taxonomy writes: admins pass
// unconditionally, vendors only when their session marks them an approved
// shop vendor. Must run after AuthRequired.
func RequireAdminOrApprovedShopVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch models.Role(contextString(c, UserRoleKey)) {
		case models.RoleAdmin:
			c.Next()
			return
		case models.RoleVendor:
			vendorType := models.VendorType(contextString(c, UserVendorTypeKey))
			approved, _ := c.Get(UserApprovedKey)
			if vendorType == models.VendorTypeShop && approved == true {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Message: "insufficient permissions"})
	}
}

func contextString(c *gin.Context, key string) string {
	raw, _ := c.Get(key)
	s, _ := raw.(string)
	return s
}

// RequireRoles allows only the listed roles past; it must run after
// AuthRequired.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		roleStr, _ := c.Get(UserRoleKey)
		role, _ := roleStr.(string)
		if _, ok := allowed[models.Role(role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Message: "insufficient permissions"})
			return
		}
		c.Next()
	}
}
