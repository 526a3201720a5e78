package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

const sessionLifetime = 7 * 24 * time.Hour

type AuthHandler struct {
	db  *database.Client
	cfg *config.Config
	*Responder
}

func NewAuthHandler(db *database.Client, cfg *config.Config, responder *Responder) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, Responder: responder}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid registration payload: "+err.Error())
		return
	}

	role := models.RoleCustomer
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	if role != models.RoleCustomer && role != models.RoleVendor {
		h.BadRequest(c, "role must be customer or vendor")
		return
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  role,
		Phone: req.Phone,
	}

	if role == models.RoleVendor {
		if req.VendorType == "" {
			h.BadRequest(c, "vendor registration requires a vendor_type")
			return
		}
		vendorType := models.VendorType(req.VendorType)
		if vendorType != models.VendorTypeShop && vendorType != models.VendorTypeBirdServices {
			h.BadRequest(c, "unknown vendor_type")
			return
		}
		user.VendorType = vendorType
		// Shop vendors are self-serve and approved on the spot; other
		// vendor types wait for an admin.
		user.IsApproved = vendorType == models.VendorTypeShop
	} else {
		user.IsApproved = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(c, fmt.Errorf("failed to hash password: %w", err))
		return
	}
	user.PasswordHash = string(hash)

	created, err := h.db.CreateUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			h.BadRequest(c, "an account with this email already exists")
			return
		}
		h.Error(c, err)
		return
	}

	h.Created(c, models.AuthResponse{User: *created})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid login payload: "+err.Error())
		return
	}

	user, err := h.db.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid email or password"})
			return
		}
		h.Error(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid email or password"})
		return
	}

	token, err := h.signToken(user)
	if err != nil {
		h.Error(c, fmt.Errorf("failed to sign session token: %w", err))
		return
	}

	h.setSessionCookie(c, token, int(sessionLifetime.Seconds()))
	h.OK(c, models.AuthResponse{User: *user, Token: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	h.OK(c, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	user, err := h.db.UserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid profile payload: "+err.Error())
		return
	}
	if req.Name == "" && req.Phone == "" {
		h.Error(c, fmt.Errorf("%w: nothing to update", services.ErrInvalidInput))
		return
	}

	user, err := h.db.UpdateUserProfile(c.Request.Context(), userID, req.Name, req.Phone)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

func (h *AuthHandler) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.Hex(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(sessionLifetime).Unix(),
	}
	if user.Role == models.RoleVendor {
		// Vendor gating happens on the claims, so approval changes take
		// effect at the next login.
		claims["vendor_type"] = string(user.VendorType)
		claims["approved"] = user.IsApproved
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", h.cfg.CookieDomain, h.cfg.IsProduction(), true)
}
