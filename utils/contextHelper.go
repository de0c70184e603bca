package utils

import (
	"context"

	"github.com/evanbosire/Eurodoor-Backend/appctx"
)

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyEmployeeId    = appctx.ContextKeyEmployeeId
	ContextKeyEmployeeRole  = appctx.ContextKeyEmployeeRole
	ContextKeyEmployeeEmail = appctx.ContextKeyEmployeeEmail
	ContextKeyCustomerId    = appctx.ContextKeyCustomerId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetEmployeeIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyEmployeeId)
}

func GetEmployeeRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyEmployeeRole)
}

func GetEmployeeEmailFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyEmployeeEmail)
}

func GetCustomerIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyCustomerId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetEmployeeIdInContext(ctx context.Context, employeeId int) context.Context {
	return appctx.Set(ctx, ContextKeyEmployeeId, employeeId)
}

func SetEmployeeRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyEmployeeRole, role)
}

func SetEmployeeEmailInContext(ctx context.Context, email string) context.Context {
	return appctx.Set(ctx, ContextKeyEmployeeEmail, email)
}

func SetCustomerIdInContext(ctx context.Context, customerId int) context.Context {
	return appctx.Set(ctx, ContextKeyCustomerId, customerId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
