package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// Employee is an actor in the directory. Role gates which transitions the employee may drive.
type Employee struct {
	ID        int            `gorm:"primary_key" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      EmployeeRole   `gorm:"size:40;not null;index" json:"role"`
	Status    EmployeeStatus `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEmployee struct {
	Name     string `json:"name" binding:"required" validate:"required,max=100"`
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
	Role     string `json:"role" binding:"required" validate:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (e Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	role, err := ParseEmployeeRole(input.Role)
	if err != nil {
		return nil, utils.InvalidInput("%s", err.Error())
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != "" {
		if phone, err = utils.FormatPhoneNumber(phone, utils.PhoneRegion()); err != nil {
			return nil, utils.InvalidInput("invalid phone number")
		}
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	employee := Employee{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:    phone,
		Password: hashed,
		Role:     role,
		Status:   EmployeeStatusActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.InvalidInput("employee %s already exists", employee.Email)
		}
		return nil, err
	}
	return &employee, nil
}

// SetEmployeeStatus activates or deactivates an employee.
func SetEmployeeStatus(ctx context.Context, id int, status EmployeeStatus) (*Employee, error) {
	if status != EmployeeStatusActive && status != EmployeeStatusInactive {
		return nil, utils.InvalidInput("invalid employee status %q", status)
	}
	employee, err := utils.FetchModel[Employee](ctx, "employee", id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(employee).Update("status", status).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var employee Employee
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&employee).Error
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := utils.ComparePassword(employee.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !employee.IsActive() {
		return nil, utils.Unauthorized("employee is disabled")
	}

	token, err := utils.JwtGenerate(employee.ID, string(employee.Role), employee.Email)
	if err != nil {
		return nil, err
	}
	// store token in redis so logout can revoke it
	if err := config.SetRedisValue("Token:"+token, employee.Email, utils.TokenLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Id:    employee.ID,
		Name:  employee.Name,
		Email: employee.Email,
		Role:  string(employee.Role),
	}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, utils.Unauthorized("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	return true, nil
}

// IsTokenRevoked reports whether a token was logged out. Without redis no token is revoked.
func IsTokenRevoked(token string) (bool, error) {
	if config.GetRedisDB() == nil {
		return false, nil
	}
	_, exists, err := config.GetRedisValue("Token:" + token)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// FindActiveEmployeeByRoleAndId loads an employee and checks it is active and holds role.
func FindActiveEmployeeByRoleAndId(ctx context.Context, role EmployeeRole, id int) (*Employee, error) {
	db := config.GetDB()
	var employee Employee
	if err := db.WithContext(ctx).First(&employee, id).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.Unauthorized("%s %d not found", strings.ToLower(string(role)), id)
		}
		return nil, err
	}
	if employee.Role != role {
		return nil, utils.Unauthorized("employee %d is not a %s", id, role)
	}
	if !employee.IsActive() {
		return nil, utils.Unauthorized("%s %d is not active", strings.ToLower(string(role)), id)
	}
	return &employee, nil
}

// FindActiveEmployeeByRoleAndEmail is FindActiveEmployeeByRoleAndId keyed by email.
func FindActiveEmployeeByRoleAndEmail(ctx context.Context, role EmployeeRole, email string) (*Employee, error) {
	db := config.GetDB()
	var employee Employee
	err := db.WithContext(ctx).
		Where("email = ? AND role = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), role, EmployeeStatusActive).
		Take(&employee).Error
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.Unauthorized("active %s %s not found", strings.ToLower(string(role)), email)
		}
		return nil, err
	}
	return &employee, nil
}

func ListEmployees(ctx context.Context, role *EmployeeRole) ([]*Employee, error) {
	db := config.GetDB()
	var results []*Employee
	dbCtx := db.WithContext(ctx)
	if role != nil && *role != "" {
		dbCtx = dbCtx.Where("role = ?", *role)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
