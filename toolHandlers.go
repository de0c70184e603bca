package main

import (
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/middlewares"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

type toolQuantitiesRequest struct {
	Tools []models.ToolQuantityInput `json:"tools" binding:"required"`
}

func createToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTool
		if !bindJSON(c, &input) {
			return
		}
		tool, err := models.CreateTool(c.Request.Context(), &input)
		respond(c, http.StatusCreated, tool, err)
	}
}

func listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tools, err := models.ListTools(c.Request.Context())
		respond(c, http.StatusOK, tools, err)
	}
}

// requestToolsHandler files the request under the caller's own email.
func requestToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toolQuantitiesRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.RequestTools(c.Request.Context(), &models.NewToolRequest{
			TechnicianEmail: employeeEmail(c),
			Tools:           req.Tools,
		})
		respond(c, http.StatusCreated, request, err)
	}
}

func myToolRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := employeeEmail(c)
		requests, err := models.ListToolRequests(c.Request.Context(), models.ToolRequestFilter{
			TechnicianEmail: &email,
			Status:          queryValue[models.ToolRequestStatus](c, "status"),
		}, middlewares.GetToolMap)
		respond(c, http.StatusOK, requests, err)
	}
}

func listToolRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := models.ListToolRequests(c.Request.Context(), models.ToolRequestFilter{
			TechnicianEmail: queryValue[string](c, "email"),
			Status:          queryValue[models.ToolRequestStatus](c, "status"),
		}, middlewares.GetToolMap)
		respond(c, http.StatusOK, requests, err)
	}
}

func approveToolRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req toolQuantitiesRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.ApproveToolRequest(c.Request.Context(), id, req.Tools)
		respond(c, http.StatusOK, request, err)
	}
}

func rejectToolRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		request, err := models.RejectToolRequest(c.Request.Context(), id)
		respond(c, http.StatusOK, request, err)
	}
}

func returnToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req toolQuantitiesRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.ReturnTools(c.Request.Context(), id, employeeEmail(c), req.Tools)
		respond(c, http.StatusOK, request, err)
	}
}
