package controllers

import (
	"strings"

	"thaitour_go/database"
	"thaitour_go/middleware"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

// UserController manages back office accounts (admin only)
type UserController struct{}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
	Password    *string `json:"password"`
}

func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 20)

	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR display_name LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return respondError(c, err, "Failed to fetch users")
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out, "total": total, "page": page, "limit": limit})
}

func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		return badRequest(c, "Username must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return badRequest(c, "Password must be at least 8 characters")
	}
	if req.Role == "" {
		req.Role = models.RoleEditor
	}
	if !utils.IsValidRole(req.Role) {
		return badRequest(c, "Invalid role")
	}

	var count int64
	database.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := models.User{
		Username:    req.Username,
		Password:    hashed,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: utils.SanitizeString(req.DisplayName),
		Role:        req.Role,
		Status:      "active",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return respondError(c, err, "Failed to create user")
	}

	middleware.LogActivity(c, "CREATE", "users", user.ID, fiber.Map{"username": user.Username, "role": user.Role})
	middleware.MarkActivityLogged(c)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully", "user": userResponse(&user)})
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return notFound(c, "User")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	current, _ := middleware.GetCurrentUser(c)
	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.DisplayName != nil {
		updates["display_name"] = utils.SanitizeString(*req.DisplayName)
	}
	if req.Role != nil {
		if !utils.IsValidRole(*req.Role) {
			return badRequest(c, "Invalid role")
		}
		if current != nil && current.ID == user.ID && *req.Role != models.RoleAdmin {
			return badRequest(c, "You cannot remove your own admin role")
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		if !utils.IsValidStatus(*req.Status) {
			return badRequest(c, "Invalid status")
		}
		if current != nil && current.ID == user.ID && *req.Status != "active" {
			return badRequest(c, "You cannot deactivate yourself")
		}
		updates["status"] = *req.Status
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return badRequest(c, "Password must be at least 8 characters")
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}
		updates["password"] = hashed
	}
	if len(updates) == 0 {
		return badRequest(c, "Nothing to update")
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		return respondError(c, err, "Failed to update user")
	}

	logged := fiber.Map{}
	for k := range updates {
		if k != "password" {
			logged[k] = updates[k]
		}
	}
	middleware.LogActivity(c, "UPDATE", "users", user.ID, logged)
	middleware.MarkActivityLogged(c)
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": userResponse(&user)})
}

func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	if current, err := middleware.GetCurrentUser(c); err == nil && current.ID == id {
		return badRequest(c, "You cannot delete yourself")
	}

	result := database.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete user")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "User")
	}

	middleware.LogActivity(c, "DELETE", "users", id, nil)
	middleware.MarkActivityLogged(c)
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
