package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/middleware"
)

// AuthController issues JWTs for the admin API.
type AuthController struct {
	users repository.UserRepository
}

// NewAuthController creates an auth controller over the given repository.
func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a bearer token.
// POST /api/auth/login
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidCredentials(c)
		}
		return err
	}
	if !user.CheckPassword(req.Password) {
		return invalidCredentials(c)
	}

	token, err := middleware.IssueToken(user)
	if err != nil {
		return err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := ac.users.Update(user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token": token,
			"user":  user,
		},
	})
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Invalid email or password",
	})
}
