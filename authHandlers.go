package main

import (
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type employeeStatusRequest struct {
	Status models.EmployeeStatus `json:"status" binding:"required"`
}

func employeeLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		info, err := models.Login(c.Request.Context(), req.Email, req.Password)
		respond(c, http.StatusOK, info, err)
	}
}

func customerLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		info, err := models.CustomerLogin(c.Request.Context(), req.Email, req.Password)
		respond(c, http.StatusOK, info, err)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		respond(c, http.StatusOK, gin.H{"logged_out": ok}, err)
	}
}

func registerCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		customer, err := models.RegisterCustomer(c.Request.Context(), &input)
		respond(c, http.StatusCreated, customer, err)
	}
}

func createEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEmployee
		if !bindJSON(c, &input) {
			return
		}
		employee, err := models.CreateEmployee(c.Request.Context(), &input)
		respond(c, http.StatusCreated, employee, err)
	}
}

func listEmployeesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		employees, err := models.ListEmployees(c.Request.Context(), queryValue[models.EmployeeRole](c, "role"))
		respond(c, http.StatusOK, employees, err)
	}
}

func listDriversHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.EmployeeRoleDriver
		drivers, err := models.ListEmployees(c.Request.Context(), &role)
		respond(c, http.StatusOK, drivers, err)
	}
}

func setEmployeeStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req employeeStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		employee, err := models.SetEmployeeStatus(c.Request.Context(), id, req.Status)
		respond(c, http.StatusOK, employee, err)
	}
}
