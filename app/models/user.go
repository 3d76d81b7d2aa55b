package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	ROLE_ADMIN    = "admin"
	ROLE_INVESTOR = "investor"

	PLAN_FREE    = "free"
	PLAN_BASIC   = "basic"
	PLAN_PREMIUM = "premium"

	PLAN_STATUS_ACTIVE   = "active"
	PLAN_STATUS_CANCELED = "canceled"
	PLAN_STATUS_PAST_DUE = "past_due"
)

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email            string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password         string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Phone            string     `gorm:"type:varchar(30);default:null" json:"phone"`
	Role             string     `gorm:"type:varchar(50);default:'investor'" json:"role" validate:"oneof=admin investor"`
	PlanKey          string     `gorm:"type:varchar(50);default:'free'" json:"plan_key" validate:"oneof=free basic premium"`
	PlanStatus       string     `gorm:"type:varchar(50);default:'active'" json:"plan_status" validate:"oneof=active canceled past_due"`
	StripeCustomerID string     `gorm:"type:varchar(100);default:null;index" json:"-"`
	IsVerified       bool       `gorm:"default:false" json:"is_verified"`
	LastLoginAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name, email, password, role string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:       name,
		Email:      email,
		Password:   pw,
		Role:       role,
		PlanKey:    PLAN_FREE,
		PlanStatus: PLAN_STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
