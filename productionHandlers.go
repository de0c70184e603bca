package main

import (
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type paymentCodeRequest struct {
	PaymentCode string `json:"payment_code" binding:"required"`
}

/* Raw material procurement */

func createRawMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRawMaterialRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.CreateRawMaterialRequest(c.Request.Context(), &input)
		respond(c, http.StatusCreated, request, err)
	}
}

func listRawMaterialRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.RawMaterialRequestFilter{
			Status:        queryValue[models.RawMaterialRequestStatus](c, "status"),
			PaymentStatus: queryValue[models.SupplierPaymentStatus](c, "payment_status"),
			Supplier:      queryValue[string](c, "supplier"),
		}
		requests, err := models.ListRawMaterialRequests(c.Request.Context(), filter)
		respond(c, http.StatusOK, requests, err)
	}
}

func respondToRawMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.RawMaterialResponseInput
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.RespondToRawMaterialRequest(c.Request.Context(), id, &input)
		respond(c, http.StatusOK, request, err)
	}
}

func supplyRawMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		request, err := models.SupplyRawMaterialRequest(c.Request.Context(), id)
		respond(c, http.StatusOK, request, err)
	}
}

func inspectRawMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req decisionRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.InspectRawMaterialRequest(c.Request.Context(), id, req.Decision)
		respond(c, http.StatusOK, request, err)
	}
}

func payRawMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req paymentCodeRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.PayRawMaterialRequest(c.Request.Context(), id, req.PaymentCode)
		respond(c, http.StatusOK, request, err)
	}
}

func supplyReceiptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		receipt, err := models.GetSupplyReceipt(c.Request.Context(), id)
		respond(c, http.StatusOK, receipt, err)
	}
}

func rawMaterialStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lots, err := models.ListRawMaterialStock(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"lots":     lots,
			"balances": models.SummarizeRawMaterialStock(lots),
		})
	}
}

func inventoryLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.InventoryLogFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
			return
		}
		logs, err := models.ListInventoryLogs(c.Request.Context(), filter)
		respond(c, http.StatusOK, logs, err)
	}
}

/* Material release */

func createMaterialReleaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMaterialReleaseRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.CreateMaterialReleaseRequest(c.Request.Context(), &input)
		respond(c, http.StatusCreated, request, err)
	}
}

func listMaterialReleasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := models.ListMaterialReleaseRequests(c.Request.Context(), queryValue[models.MaterialReleaseStatus](c, "status"))
		respond(c, http.StatusOK, requests, err)
	}
}

func releaseMaterialHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		request, err := models.ReleaseMaterial(c.Request.Context(), id)
		respond(c, http.StatusOK, request, err)
	}
}

func decideMaterialReleaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req decisionRequest
		if !bindJSON(c, &req) {
			return
		}
		request, err := models.DecideMaterialRelease(c.Request.Context(), id, req.Decision)
		respond(c, http.StatusOK, request, err)
	}
}

/* Production requests and blacksmith tasks */

func createProductionRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProductionRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.CreateProductionRequest(c.Request.Context(), &input)
		respond(c, http.StatusCreated, request, err)
	}
}

func listProductionRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := models.ListProductionRequests(c.Request.Context(), queryValue[models.ProductionRequestStatus](c, "status"))
		respond(c, http.StatusOK, requests, err)
	}
}

// productionRequestAction wraps the single-id production request transitions.
func productionRequestAction(fn func(ctx *gin.Context, id int) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		result, err := fn(c, id)
		respond(c, http.StatusOK, result, err)
	}
}

func requestDoorHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.RequestDoor(c.Request.Context(), id)
	})
}

func approveDoorRequestHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.ApproveDoorRequest(c.Request.Context(), id)
	})
}

func assignBlacksmithTaskHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.AssignBlacksmithTask(c.Request.Context(), id)
	})
}

func listAssignedTasksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := models.ListAssignedTasks(c.Request.Context(), queryValue[models.AssignedTaskStatus](c, "status"))
		respond(c, http.StatusOK, tasks, err)
	}
}

func startTaskHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.StartTask(c.Request.Context(), id)
	})
}

func completeTaskHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.CompleteTask(c.Request.Context(), id)
	})
}

func approveTaskHandler() gin.HandlerFunc {
	return productionRequestAction(func(c *gin.Context, id int) (any, error) {
		return models.ApproveTask(c.Request.Context(), id)
	})
}

func listProductStoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.ListProductStore(c.Request.Context())
		respond(c, http.StatusOK, rows, err)
	}
}
