package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/gin-gonic/gin"
)

// errorStatus maps workflow error kinds to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrInvalidState), errors.Is(err, utils.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, utils.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrUnauthorized):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		config.LogError(config.GetLogger(), "server", c.FullPath(), c.Request.Method, nil, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respond(c *gin.Context, status int, data any, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, data)
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}

func paramId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) *int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func queryValue[S ~string](c *gin.Context, name string) *S {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	s := S(v)
	return &s
}

func employeeId(c *gin.Context) int {
	id, _ := utils.GetEmployeeIdFromContext(c.Request.Context())
	return id
}

func customerId(c *gin.Context) int {
	id, _ := utils.GetCustomerIdFromContext(c.Request.Context())
	return id
}

func employeeEmail(c *gin.Context) string {
	email, _ := utils.GetEmployeeEmailFromContext(c.Request.Context())
	return email
}
