package main

import (
	"github.com/evanbosire/Eurodoor-Backend/middlewares"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

func registerRoutes(api *gin.RouterGroup) {
	api.Use(middlewares.AuthMiddleware())

	auth := api.Group("/auth")
	auth.POST("/login", employeeLoginHandler())
	auth.POST("/customer/login", customerLoginHandler())
	auth.POST("/customer/register", registerCustomerHandler())
	auth.POST("/logout", logoutHandler())

	api.GET("/products", listActiveProductsHandler())

	admin := api.Group("/admin", middlewares.RequireRoles(models.EmployeeRoleAdmin))
	admin.POST("/employees", createEmployeeHandler())
	admin.GET("/employees", listEmployeesHandler())
	admin.PATCH("/employees/:id/status", setEmployeeStatusHandler())

	registerProductionRoutes(api.Group("/production"))
	registerInventoryRoutes(api.Group("/inventory"))
	registerCustomerRoutes(api.Group("/customer", middlewares.RequireCustomer()))
	registerOrderFlowRoutes(api)
	registerServiceRoutes(api.Group("/service"))
	registerToolRoutes(api.Group("/tools"))

	reports := api.Group("/reports", middlewares.RequireRoles(models.EmployeeRoleFinanceManager))
	reports.GET("/order-lines", orderLinesReportHandler())
	reports.GET("/suppliers", supplierReportHandler())
	reports.GET("/service-bookings", serviceBookingReportHandler())
}

func registerProductionRoutes(g *gin.RouterGroup) {
	inventory := middlewares.RequireRoles(models.EmployeeRoleInventoryManager)
	supplier := middlewares.RequireRoles(models.EmployeeRoleSupplier)
	finance := middlewares.RequireRoles(models.EmployeeRoleFinanceManager)
	production := middlewares.RequireRoles(models.EmployeeRoleProductionManager)
	blacksmith := middlewares.RequireRoles(models.EmployeeRoleBlacksmith)
	staff := middlewares.RequireRoles(models.EmployeeRoleInventoryManager, models.EmployeeRoleProductionManager)

	raw := g.Group("/raw-materials")
	raw.POST("", inventory, createRawMaterialRequestHandler())
	raw.GET("", middlewares.RequireRoles(models.EmployeeRoleInventoryManager, models.EmployeeRoleSupplier, models.EmployeeRoleFinanceManager), listRawMaterialRequestsHandler())
	raw.POST("/:id/respond", supplier, respondToRawMaterialRequestHandler())
	raw.POST("/:id/supply", supplier, supplyRawMaterialRequestHandler())
	raw.POST("/:id/inspect", inventory, inspectRawMaterialRequestHandler())
	raw.POST("/:id/pay", finance, payRawMaterialRequestHandler())
	raw.GET("/:id/receipt", middlewares.RequireRoles(models.EmployeeRoleSupplier, models.EmployeeRoleFinanceManager), supplyReceiptHandler())

	g.GET("/stock", staff, rawMaterialStockHandler())
	g.GET("/inventory-logs", inventory, inventoryLogsHandler())

	releases := g.Group("/releases")
	releases.POST("", production, createMaterialReleaseHandler())
	releases.GET("", staff, listMaterialReleasesHandler())
	releases.POST("/:id/release", inventory, releaseMaterialHandler())
	releases.POST("/:id/decide", production, decideMaterialReleaseHandler())

	requests := g.Group("/requests", staff)
	requests.POST("", createProductionRequestHandler())
	requests.GET("", listProductionRequestsHandler())
	requests.POST("/:id/request-door", requestDoorHandler())
	requests.POST("/:id/approve-door", approveDoorRequestHandler())
	requests.POST("/:id/assign", production, assignBlacksmithTaskHandler())

	tasks := g.Group("/tasks")
	tasks.GET("", middlewares.RequireRoles(models.EmployeeRoleProductionManager, models.EmployeeRoleBlacksmith), listAssignedTasksHandler())
	tasks.POST("/:id/start", blacksmith, startTaskHandler())
	tasks.POST("/:id/complete", blacksmith, completeTaskHandler())
	tasks.POST("/:id/approve", production, approveTaskHandler())

	g.GET("/store", staff, listProductStoreHandler())
}

func registerInventoryRoutes(g *gin.RouterGroup) {
	g.Use(middlewares.RequireRoles(models.EmployeeRoleInventoryManager))
	g.GET("/products", listProductsHandler())
	g.POST("/products", createProductHandler())
	g.PATCH("/products/:id", updateProductHandler())
	g.POST("/store/transfer", transferStoreHandler())
	g.GET("/orders", listOrdersHandler())
	g.POST("/orders/:id/release", releaseOrderHandler())
}

func registerCustomerRoutes(g *gin.RouterGroup) {
	g.GET("/cart", getCartHandler())
	g.POST("/cart/items", addToCartHandler())
	g.DELETE("/cart/items/:id", removeCartItemHandler())
	g.POST("/checkout", checkoutHandler())

	g.GET("/orders", customerOrdersHandler())
	g.GET("/orders/:id/receipt", customerOrderReceiptHandler())
	g.POST("/orders/:id/feedback", submitFeedbackHandler())
	g.GET("/feedbacks", customerFeedbacksHandler())

	g.POST("/service-bookings", createServiceBookingHandler())
	g.GET("/service-bookings", customerServiceBookingsHandler())
	g.POST("/service-bookings/:id/feedback", submitServiceFeedbackHandler())
	g.GET("/service-receipts", customerServiceReceiptsHandler())
}

func registerOrderFlowRoutes(api *gin.RouterGroup) {
	finance := api.Group("/finance", middlewares.RequireRoles(models.EmployeeRoleFinanceManager))
	finance.GET("/payments", listPaymentsHandler())
	finance.POST("/payments/:id/confirm", confirmPaymentHandler())
	finance.GET("/orders", listOrdersHandler())
	finance.GET("/orders/:id/receipt", orderReceiptHandler())
	finance.POST("/service-bookings/:id/confirm-payment", confirmServicePaymentHandler())

	dispatch := api.Group("/dispatch", middlewares.RequireRoles(models.EmployeeRoleDispatchManager))
	dispatch.GET("/orders", listOrdersHandler())
	dispatch.POST("/orders/:id/dispatch", dispatchOrderHandler())
	dispatch.GET("/drivers", listDriversHandler())
	dispatch.GET("/feedbacks", listFeedbacksHandler())
	dispatch.POST("/feedbacks/:id/reply", replyFeedbackHandler())

	driver := api.Group("/driver", middlewares.RequireRoles(models.EmployeeRoleDriver))
	driver.GET("/dispatches", driverDispatchesHandler())
	driver.POST("/dispatches/:id/delivered", markDeliveredHandler())
}

func registerServiceRoutes(g *gin.RouterGroup) {
	manager := middlewares.RequireRoles(models.EmployeeRoleServiceManager)
	supervisor := middlewares.RequireRoles(models.EmployeeRoleSupervisor)
	technician := middlewares.RequireRoles(models.EmployeeRoleTechnician)

	g.GET("/bookings", manager, listServiceBookingsHandler())
	g.POST("/bookings/:id/allocate", manager, allocateSupervisorHandler())
	g.POST("/bookings/:id/confirm", manager, confirmServiceCompletionHandler())
	g.POST("/bookings/:id/close", manager, closeServiceBookingHandler())
	g.GET("/feedbacks", manager, listServiceFeedbacksHandler())
	g.POST("/feedbacks/:id/reply", manager, replyServiceFeedbackHandler())

	g.GET("/supervisor/bookings", supervisor, assignedServiceBookingsHandler(models.EmployeeRoleSupervisor))
	g.POST("/bookings/:id/assign-technician", supervisor, assignTechnicianHandler())
	g.POST("/bookings/:id/approve", supervisor, supervisorApproveServiceHandler())

	g.GET("/technician/bookings", technician, assignedServiceBookingsHandler(models.EmployeeRoleTechnician))
	g.POST("/bookings/:id/start", technician, startServiceHandler())
	g.POST("/bookings/:id/rendered", technician, markServiceRenderedHandler())
}

func registerToolRoutes(g *gin.RouterGroup) {
	manager := middlewares.RequireRoles(models.EmployeeRoleServiceManager)
	technician := middlewares.RequireRoles(models.EmployeeRoleTechnician)

	g.POST("", manager, createToolHandler())
	g.GET("", middlewares.RequireRoles(models.EmployeeRoleServiceManager, models.EmployeeRoleTechnician), listToolsHandler())
	g.GET("/requests", manager, listToolRequestsHandler())
	g.POST("/requests/:id/approve", manager, approveToolRequestHandler())
	g.POST("/requests/:id/reject", manager, rejectToolRequestHandler())

	g.POST("/requests", technician, requestToolsHandler())
	g.GET("/my-requests", technician, myToolRequestsHandler())
	g.POST("/requests/:id/return", technician, returnToolsHandler())
}
