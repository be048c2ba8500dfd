package controllers

import (
	"strings"
	"time"

	"thaitour_go/database"
	"thaitour_go/middleware"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct{}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest lets a user edit their own account
type UpdateProfileRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
}

func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":            u.ID,
		"username":      u.Username,
		"email":         u.Email,
		"display_name":  u.DisplayName,
		"role":          u.Role,
		"status":        u.Status,
		"avatar":        u.Avatar,
		"last_login_at": u.LastLoginAt,
	}
}

// Login authenticates a back office user and returns a JWT token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	var user models.User
	if err := database.DB.Where("username = ? AND status = ?", req.Username, "active").First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	now := time.Now()
	if err := database.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	c.Locals("user", &user)
	middleware.LogActivity(c, "LOGIN", "auth", user.ID, fiber.Map{"role": user.Role})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    userResponse(&user),
	})
}

// GetProfile returns the current user's profile
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// UpdateProfile edits email, display name and avatar of the current user
func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.DisplayName != nil {
		updates["display_name"] = utils.SanitizeString(*req.DisplayName)
	}
	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if len(updates) == 0 {
		return badRequest(c, "Nothing to update")
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		return respondError(c, err, "Failed to update profile")
	}
	middleware.LogActivity(c, "UPDATE", "profile", user.ID, updates)
	return c.JSON(fiber.Map{"message": "Profile updated", "user": userResponse(user)})
}

// ChangePassword changes the current user's password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return badRequest(c, "New password must be at least 8 characters")
	}
	if err := utils.CheckPassword(req.CurrentPassword, user.Password); err != nil {
		return badRequest(c, "Current password is incorrect")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	if err := database.DB.Model(user).Update("password", hashed).Error; err != nil {
		return respondError(c, err, "Failed to update password")
	}

	middleware.LogActivity(c, "CHANGE_PASSWORD", "auth", user.ID, nil)
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// Logout revokes the current JWT until it expires
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	claims, _ := middleware.GetCurrentClaims(c)

	if token != "" {
		if err := middleware.BlacklistToken(c.UserContext(), token, claims); err != nil {
			logrus.WithError(err).Warn("Failed to blacklist token on logout")
		}
	}

	var userID uint
	if claims != nil {
		userID = claims.UserID
	}
	middleware.LogActivity(c, "LOGOUT", "auth", userID, nil)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
