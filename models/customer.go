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

// CustomerRole is the token role carried by customer sessions.
const CustomerRole = "Customer"

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name     string `json:"name" binding:"required" validate:"required,max=100"`
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Phone    string `json:"phone" binding:"required" validate:"required,phone"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

func RegisterCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	phone, err := utils.FormatPhoneNumber(input.Phone, utils.PhoneRegion())
	if err != nil {
		return nil, utils.InvalidInput("invalid phone number")
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	customer := Customer{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:    phone,
		Password: hashed,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.InvalidInput("customer %s already exists", customer.Email)
		}
		return nil, err
	}
	return &customer, nil
}

func CustomerLogin(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&customer).Error
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if err := utils.ComparePassword(customer.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	token, err := utils.JwtGenerate(customer.ID, CustomerRole, customer.Email)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, customer.Email, utils.TokenLifespan()); err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token: token,
		Id:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
		Role:  CustomerRole,
	}, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, "customer", id)
}
