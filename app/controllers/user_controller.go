package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/statistics"
)

// UserController serves the admin user management API.
type UserController struct {
	users repository.UserRepository
}

// NewUserController creates a user controller over the given repository.
func NewUserController(users repository.UserRepository) *UserController {
	return &UserController{users: users}
}

// HandleGetUserStats returns aggregate user statistics.
// GET /api/users/stats
func (uc *UserController) HandleGetUserStats(c *fiber.Ctx) error {
	stats, err := statistics.GetUserStats(uc.users)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// HandleGetAllUsers returns all users, newest first. Password hashes are
// never serialized (excluded at the model level).
// GET /api/users
func (uc *UserController) HandleGetAllUsers(c *fiber.Ctx) error {
	users, err := uc.users.ListNewestFirst()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"users": users,
			"count": len(users),
		},
	})
}

// HandleGetUserByID returns a single user.
// GET /api/users/:id
func (uc *UserController) HandleGetUserByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return userNotFound(c)
	}

	user, err := uc.users.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userNotFound(c)
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": user},
	})
}

// HandleDeleteUser removes a user. Admin accounts can never be deleted
// through this endpoint.
// DELETE /api/users/:id
func (uc *UserController) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return userNotFound(c)
	}

	user, err := uc.users.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userNotFound(c)
		}
		return err
	}

	if user.Role == models.ROLE_ADMIN {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Cannot delete admin users",
		})
	}

	if err := uc.users.Delete(user.ID); err != nil {
		return err
	}
	statistics.InvalidateUserStats()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}

func userNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": "User not found",
	})
}
