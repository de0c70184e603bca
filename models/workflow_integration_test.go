package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupIntegration starts throwaway mysql and redis containers and migrates a fresh schema.
func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "eurodoor_test")
	t.Setenv("CATALOG_CACHE_ENABLED", "false")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	return utils.SetCorrelationIdInContext(context.Background(), "integration-test")
}

func materialBalance(t *testing.T, ctx context.Context, name string) decimal.Decimal {
	t.Helper()
	lots, err := models.ListRawMaterialStock(ctx)
	require.NoError(t, err)
	for _, b := range models.SummarizeRawMaterialStock(lots) {
		if strings.EqualFold(b.MaterialName, name) {
			return b.Quantity
		}
	}
	return decimal.Zero
}

func productQuantity(t *testing.T, id int) int {
	t.Helper()
	var p models.Product
	require.NoError(t, config.GetDB().First(&p, id).Error)
	return p.Quantity
}

// receiveRawMaterial walks one request from creation to inventory acceptance.
func receiveRawMaterial(t *testing.T, ctx context.Context, name string, qty int64) {
	t.Helper()
	req, err := models.CreateRawMaterialRequest(ctx, &models.NewRawMaterialRequest{
		MaterialName: name,
		Quantity:     decimal.NewFromInt(qty),
		Unit:         "pcs",
		Supplier:     "doors@suppliers.co.ke",
	})
	require.NoError(t, err)
	unitCost := decimal.NewFromInt(10)
	_, err = models.RespondToRawMaterialRequest(ctx, req.ID, &models.RawMaterialResponseInput{Decision: "approve", UnitCost: &unitCost})
	require.NoError(t, err)
	_, err = models.SupplyRawMaterialRequest(ctx, req.ID)
	require.NoError(t, err)
	_, err = models.InspectRawMaterialRequest(ctx, req.ID, "approve")
	require.NoError(t, err)
}

func runTask(t *testing.T, ctx context.Context, doorName string, qty int, description string) {
	t.Helper()
	pr, err := models.CreateProductionRequest(ctx, &models.NewProductionRequest{DoorName: doorName, Quantity: qty, Description: description})
	require.NoError(t, err)
	_, err = models.RequestDoor(ctx, pr.ID)
	require.NoError(t, err)
	_, err = models.ApproveDoorRequest(ctx, pr.ID)
	require.NoError(t, err)
	task, err := models.AssignBlacksmithTask(ctx, pr.ID)
	require.NoError(t, err)
	_, err = models.StartTask(ctx, task.ID)
	require.NoError(t, err)
	_, err = models.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	_, err = models.ApproveTask(ctx, task.ID)
	require.NoError(t, err)
}

func storeQuantity(t *testing.T, ctx context.Context, doorName string) int {
	t.Helper()
	store, err := models.ListProductStore(ctx)
	require.NoError(t, err)
	for _, s := range store {
		if s.DoorName == doorName {
			return s.Quantity
		}
	}
	return 0
}

func toolQuantity(t *testing.T, id int) int {
	t.Helper()
	var tool models.Tool
	require.NoError(t, config.GetDB().First(&tool, id).Error)
	return tool.QuantityAvailable
}

func TestEuroDoorWorkflows(t *testing.T) {
	ctx := setupIntegration(t)

	t.Run("raw material procurement", func(t *testing.T) {
		req, err := models.CreateRawMaterialRequest(ctx, &models.NewRawMaterialRequest{
			MaterialName: "Steel Sheet",
			Quantity:     decimal.NewFromInt(100),
			Unit:         "kg",
			Supplier:     "steel@suppliers.co.ke",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RawMaterialRequestStatusPending, req.Status)

		_, err = models.SupplyRawMaterialRequest(ctx, req.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)

		unitCost := decimal.NewFromInt(50)
		req, err = models.RespondToRawMaterialRequest(ctx, req.ID, &models.RawMaterialResponseInput{Decision: "approve", UnitCost: &unitCost})
		require.NoError(t, err)
		require.NotNil(t, req.TotalCost)
		assert.True(t, req.TotalCost.Equal(decimal.NewFromInt(5000)), req.TotalCost.String())

		_, err = models.SupplyRawMaterialRequest(ctx, req.ID)
		require.NoError(t, err)

		req, err = models.InspectRawMaterialRequest(ctx, req.ID, "accept")
		require.NoError(t, err)
		assert.Equal(t, models.RawMaterialRequestStatusAccepted, req.Status)
		assert.Equal(t, models.SupplierPaymentStatusUnpaid, req.PaymentStatus)
		assert.True(t, materialBalance(t, ctx, "steel sheet").Equal(decimal.NewFromInt(100)))

		_, err = models.PayRawMaterialRequest(ctx, req.ID, "short")
		require.ErrorIs(t, err, utils.ErrInvalidInput)

		req, err = models.PayRawMaterialRequest(ctx, req.ID, "A2B3CDEFGH")
		require.NoError(t, err)
		assert.Equal(t, models.SupplierPaymentStatusPaid, req.PaymentStatus)
		assert.True(t, req.AmountPaid.Equal(decimal.NewFromInt(5000)))

		_, err = models.PayRawMaterialRequest(ctx, req.ID, "A2B3CDEFGH")
		require.ErrorIs(t, err, utils.ErrInvalidState)

		receipt, err := models.GetSupplyReceipt(ctx, req.ID)
		require.NoError(t, err)
		assert.NotNil(t, receipt)
	})

	t.Run("material release", func(t *testing.T) {
		release, err := models.CreateMaterialReleaseRequest(ctx, &models.NewMaterialReleaseRequest{
			MaterialName: "steel sheet",
			Quantity:     decimal.NewFromInt(30),
		})
		require.NoError(t, err)

		_, err = models.DecideMaterialRelease(ctx, release.ID, "approve")
		require.ErrorIs(t, err, utils.ErrInvalidState)

		_, err = models.ReleaseMaterial(ctx, release.ID)
		require.NoError(t, err)
		assert.True(t, materialBalance(t, ctx, "steel sheet").Equal(decimal.NewFromInt(100)), "release only checks stock")

		release, err = models.DecideMaterialRelease(ctx, release.ID, "approve")
		require.NoError(t, err)
		assert.Equal(t, models.MaterialReleaseStatusApproved, release.Status)
		assert.True(t, materialBalance(t, ctx, "steel sheet").Equal(decimal.NewFromInt(70)))

		big, err := models.CreateMaterialReleaseRequest(ctx, &models.NewMaterialReleaseRequest{
			MaterialName: "Steel Sheet",
			Quantity:     decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		_, err = models.ReleaseMaterial(ctx, big.ID)
		require.ErrorIs(t, err, utils.ErrInsufficientStock)

		missing, err := models.CreateMaterialReleaseRequest(ctx, &models.NewMaterialReleaseRequest{
			MaterialName: "Oak Plank",
			Quantity:     decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		_, err = models.ReleaseMaterial(ctx, missing.ID)
		require.ErrorIs(t, err, utils.ErrInsufficientStock)
	})

	t.Run("oak door release", func(t *testing.T) {
		receiveRawMaterial(t, ctx, "OakDoor", 10)

		tooMany, err := models.CreateMaterialReleaseRequest(ctx, &models.NewMaterialReleaseRequest{
			MaterialName: "OakDoor",
			Quantity:     decimal.NewFromInt(15),
		})
		require.NoError(t, err)
		_, err = models.ReleaseMaterial(ctx, tooMany.ID)
		require.ErrorIs(t, err, utils.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Available: 10")

		five, err := models.CreateMaterialReleaseRequest(ctx, &models.NewMaterialReleaseRequest{
			MaterialName: "oakdoor",
			Quantity:     decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		_, err = models.ReleaseMaterial(ctx, five.ID)
		require.NoError(t, err)
		_, err = models.DecideMaterialRelease(ctx, five.ID, "approve")
		require.NoError(t, err)
		assert.True(t, materialBalance(t, ctx, "OakDoor").Equal(decimal.NewFromInt(5)))
	})

	t.Run("glass tasks sum into one store row", func(t *testing.T) {
		runTask(t, ctx, "Glass", 20, "frosted")
		assert.Equal(t, 20, storeQuantity(t, ctx, "Glass"))
		runTask(t, ctx, "Glass", 20, "frosted")
		assert.Equal(t, 40, storeQuantity(t, ctx, "Glass"))
	})

	var storeId int
	t.Run("production pipeline", func(t *testing.T) {
		pr, err := models.CreateProductionRequest(ctx, &models.NewProductionRequest{
			DoorName:    "OakDoor",
			Quantity:    5,
			Description: "solid oak, 2100x900",
		})
		require.NoError(t, err)

		_, err = models.ApproveDoorRequest(ctx, pr.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)

		_, err = models.RequestDoor(ctx, pr.ID)
		require.NoError(t, err)
		_, err = models.ApproveDoorRequest(ctx, pr.ID)
		require.NoError(t, err)

		task, err := models.AssignBlacksmithTask(ctx, pr.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssignedTaskStatusAssigned, task.Status)

		_, err = models.CompleteTask(ctx, task.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)

		_, err = models.StartTask(ctx, task.ID)
		require.NoError(t, err)
		_, err = models.CompleteTask(ctx, task.ID)
		require.NoError(t, err)
		task, err = models.ApproveTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssignedTaskStatusApproved, task.Status)

		pr, err = models.GetProductionRequest(ctx, pr.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProductionRequestStatusApproved, pr.Status)

		store, err := models.ListProductStore(ctx)
		require.NoError(t, err)
		for _, s := range store {
			if s.DoorName == "OakDoor" {
				assert.Equal(t, 5, s.Quantity)
				storeId = s.ID
			}
		}
	})

	var orderId, customerId int
	t.Run("order release", func(t *testing.T) {
		require.NotZero(t, storeId)
		product, err := models.CreateProduct(ctx, &models.NewProduct{
			Title: "OakDoor",
			Price: decimal.NewFromInt(1000),
		})
		require.NoError(t, err)

		_, err = models.TransferStoreToCatalog(ctx, &models.NewStoreTransfer{StoreId: storeId, ProductId: product.ID, Quantity: 6})
		require.ErrorIs(t, err, utils.ErrInsufficientStock)
		assert.Equal(t, 0, productQuantity(t, product.ID))

		_, err = models.TransferStoreToCatalog(ctx, &models.NewStoreTransfer{StoreId: storeId, ProductId: product.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, productQuantity(t, product.ID))

		customer, err := models.RegisterCustomer(ctx, &models.NewCustomer{
			Name:     "Jane Wanjiru",
			Email:    "jane@example.com",
			Phone:    "0712345678",
			Password: "secret123",
		})
		require.NoError(t, err)

		_, err = models.AddToCart(ctx, customer.ID, &models.NewCartItem{ProductId: product.ID, Quantity: 2})
		require.NoError(t, err)

		_, err = models.Checkout(ctx, customer.ID, &models.CheckoutInput{Code: "MPE1JF2CTD", AmountPaid: decimal.NewFromInt(1999)})
		require.ErrorIs(t, err, utils.ErrInvalidInput)

		order, err := models.Checkout(ctx, customer.ID, &models.CheckoutInput{Code: "MPE1JF2CTD", AmountPaid: decimal.NewFromInt(2000)})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPlaced, order.Status)
		assert.True(t, order.Total.Equal(decimal.NewFromInt(2000)))
		require.NotNil(t, order.PaymentId)

		_, err = models.ReleaseOrder(ctx, order.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState, "payment not confirmed yet")

		_, err = models.ConfirmPayment(ctx, *order.PaymentId)
		require.NoError(t, err)

		order, err = models.ReleaseOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReleased, order.Status)
		assert.Equal(t, 1, productQuantity(t, product.ID))

		_, err = models.ReleaseOrder(ctx, order.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)
		assert.Equal(t, 1, productQuantity(t, product.ID), "second release must not deduct again")

		logs, err := models.ListInventoryLogs(ctx, models.InventoryLogFilter{ReferenceType: "order", ReferenceId: order.ID})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.True(t, logs[0].Quantity.Equal(decimal.NewFromInt(-2)), logs[0].Quantity.String())
		orderId, customerId = order.ID, customer.ID
	})

	t.Run("tool custody", func(t *testing.T) {
		drill, err := models.CreateTool(ctx, &models.NewTool{Name: "Drill", Unit: "pcs", Quantity: 1})
		require.NoError(t, err)
		grinder, err := models.CreateTool(ctx, &models.NewTool{Name: "Angle Grinder", Unit: "pcs", Quantity: 4})
		require.NoError(t, err)

		_, err = models.CreateEmployee(ctx, &models.NewEmployee{
			Name:     "Otieno",
			Email:    "tech@eurodoor.co.ke",
			Password: "secret123",
			Role:     string(models.EmployeeRoleTechnician),
		})
		require.NoError(t, err)

		request, err := models.RequestTools(ctx, &models.NewToolRequest{
			TechnicianEmail: "tech@eurodoor.co.ke",
			Tools: []models.ToolQuantityInput{
				{ToolId: drill.ID, Quantity: 2},
				{ToolId: grinder.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)

		// Drill is short; nothing may be deducted for either tool.
		_, err = models.ApproveToolRequest(ctx, request.ID, []models.ToolQuantityInput{
			{ToolId: drill.ID, Quantity: 2},
			{ToolId: grinder.ID, Quantity: 2},
		})
		require.ErrorIs(t, err, utils.ErrInsufficientStock)
		assert.Equal(t, 1, toolQuantity(t, drill.ID))
		assert.Equal(t, 4, toolQuantity(t, grinder.ID))

		request, err = models.ApproveToolRequest(ctx, request.ID, []models.ToolQuantityInput{
			{ToolId: drill.ID, Quantity: 1},
			{ToolId: grinder.ID, Quantity: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, models.ToolRequestStatusApproved, request.Status)
		assert.Equal(t, 0, toolQuantity(t, drill.ID))
		assert.Equal(t, 2, toolQuantity(t, grinder.ID))

		_, err = models.ReturnTools(ctx, request.ID, "someone@eurodoor.co.ke", []models.ToolQuantityInput{{ToolId: drill.ID, Quantity: 1}})
		require.ErrorIs(t, err, utils.ErrUnauthorized)

		request, err = models.ReturnTools(ctx, request.ID, "tech@eurodoor.co.ke", []models.ToolQuantityInput{{ToolId: grinder.ID, Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, models.ToolRequestStatusApproved, request.Status)

		request, err = models.ReturnTools(ctx, request.ID, "tech@eurodoor.co.ke", []models.ToolQuantityInput{
			{ToolId: drill.ID, Quantity: 1},
			{ToolId: grinder.ID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, models.ToolRequestStatusReturned, request.Status)
		assert.Equal(t, 1, toolQuantity(t, drill.ID))
		assert.Equal(t, 4, toolQuantity(t, grinder.ID))
	})

	t.Run("checkout keeps cart prices", func(t *testing.T) {
		require.NotZero(t, customerId)
		product, err := models.CreateProduct(ctx, &models.NewProduct{
			Title:    "Steel Security Door",
			Price:    decimal.NewFromInt(100),
			Quantity: 10,
		})
		require.NoError(t, err)

		_, err = models.AddToCart(ctx, customerId, &models.NewCartItem{ProductId: product.ID, Quantity: 2})
		require.NoError(t, err)
		price := decimal.NewFromInt(500)
		_, err = models.UpdateProduct(ctx, product.ID, &models.UpdateProductInput{Price: &price})
		require.NoError(t, err)
		cart, err := models.AddToCart(ctx, customerId, &models.NewCartItem{ProductId: product.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2, "a new price starts a new line")
		assert.True(t, cart.Total().Equal(decimal.NewFromInt(700)), cart.Total().String())

		_, err = models.Checkout(ctx, customerId, &models.CheckoutInput{Code: "MPE1JF2CTD", AmountPaid: decimal.NewFromInt(699)})
		require.ErrorIs(t, err, utils.ErrInvalidInput)

		order, err := models.Checkout(ctx, customerId, &models.CheckoutInput{Code: "MPE1JF2CTD", AmountPaid: decimal.NewFromInt(700)})
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(decimal.NewFromInt(700)), order.Total.String())
	})

	t.Run("dispatch and delivery", func(t *testing.T) {
		require.NotZero(t, orderId)
		driver, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name: "Kamau", Email: "driver@eurodoor.co.ke", Password: "secret123", Role: string(models.EmployeeRoleDriver),
		})
		require.NoError(t, err)
		otherDriver, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name: "Mutua", Email: "driver2@eurodoor.co.ke", Password: "secret123", Role: string(models.EmployeeRoleDriver),
		})
		require.NoError(t, err)
		retired, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name: "Njoroge", Email: "retired@eurodoor.co.ke", Password: "secret123", Role: string(models.EmployeeRoleDriver),
		})
		require.NoError(t, err)
		_, err = models.SetEmployeeStatus(ctx, retired.ID, models.EmployeeStatusInactive)
		require.NoError(t, err)
		clerk, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name: "Akinyi", Email: "dispatch@eurodoor.co.ke", Password: "secret123", Role: string(models.EmployeeRoleDispatchManager),
		})
		require.NoError(t, err)

		_, err = models.DispatchOrder(ctx, orderId, retired.ID)
		require.ErrorIs(t, err, utils.ErrUnauthorized)
		_, err = models.DispatchOrder(ctx, orderId, clerk.ID)
		require.ErrorIs(t, err, utils.ErrUnauthorized)
		order, err := models.GetOrder(ctx, orderId)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReleased, order.Status)

		dispatch, err := models.DispatchOrder(ctx, orderId, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DispatchStatusAssigned, dispatch.Status)
		order, err = models.GetOrder(ctx, orderId)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)

		_, err = models.MarkDelivered(ctx, dispatch.ID, otherDriver.ID)
		require.ErrorIs(t, err, utils.ErrUnauthorized)

		dispatch, err = models.MarkDelivered(ctx, dispatch.ID, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DispatchStatusDelivered, dispatch.Status)
		assert.NotNil(t, dispatch.DeliveredAt)
		order, err = models.GetOrder(ctx, orderId)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusDelivered, order.Status)

		_, err = models.MarkDelivered(ctx, dispatch.ID, driver.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)

		feedback, err := models.SubmitFeedback(ctx, orderId, customerId, &models.NewFeedback{Message: "Door arrived scratched"})
		require.NoError(t, err)
		feedback, err = models.ReplyToFeedback(ctx, feedback.ID, clerk.ID, &models.FeedbackReply{Reply: "A replacement panel is on the way"})
		require.NoError(t, err)
		require.NotNil(t, feedback.Reply)
		_, err = models.ReplyToFeedback(ctx, feedback.ID, clerk.ID, &models.FeedbackReply{Reply: "again"})
		require.ErrorIs(t, err, utils.ErrInvalidState)
	})

	t.Run("service booking chain", func(t *testing.T) {
		require.NotZero(t, customerId)
		newEmployee := func(name, email string, role models.EmployeeRole) *models.Employee {
			e, err := models.CreateEmployee(ctx, &models.NewEmployee{Name: name, Email: email, Password: "secret123", Role: string(role)})
			require.NoError(t, err)
			return e
		}
		supervisor := newEmployee("Wekesa", "supervisor@eurodoor.co.ke", models.EmployeeRoleSupervisor)
		otherSupervisor := newEmployee("Chebet", "supervisor2@eurodoor.co.ke", models.EmployeeRoleSupervisor)
		technician := newEmployee("Kiprop", "fundi@eurodoor.co.ke", models.EmployeeRoleTechnician)
		manager := newEmployee("Atieno", "service@eurodoor.co.ke", models.EmployeeRoleServiceManager)

		booking, err := models.CreateServiceBooking(ctx, customerId, &models.NewServiceBooking{
			DoorType:    "Sliding glass",
			Location:    models.ServiceLocation{Instructions: "Gate B, Kilimani"},
			Price:       decimal.NewFromInt(1500),
			PaymentCode: "MPE1JF2CTD",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusRequested, booking.ServiceStatus)

		_, err = models.AllocateSupervisor(ctx, booking.ID, supervisor.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)
		_, err = models.SubmitServiceFeedback(ctx, booking.ID, customerId, &models.NewFeedback{Message: "too early"})
		require.ErrorIs(t, err, utils.ErrInvalidState)

		booking, err = models.ConfirmServicePayment(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ServicePaymentStatusConfirmed, booking.PaymentStatus)
		assert.Equal(t, models.ServiceStatusPaymentConfirmed, booking.ServiceStatus)

		_, err = models.AllocateSupervisor(ctx, booking.ID, supervisor.ID)
		require.NoError(t, err)
		_, err = models.AssignTechnician(ctx, booking.ID, otherSupervisor.ID, technician.ID)
		require.ErrorIs(t, err, utils.ErrUnauthorized)
		_, err = models.AssignTechnician(ctx, booking.ID, supervisor.ID, technician.ID)
		require.NoError(t, err)
		_, err = models.MarkServiceRendered(ctx, booking.ID, technician.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState, "rendered cannot skip in_progress")
		_, err = models.StartService(ctx, booking.ID, technician.ID)
		require.NoError(t, err)
		_, err = models.MarkServiceRendered(ctx, booking.ID, technician.ID)
		require.NoError(t, err)
		_, err = models.SupervisorApproveService(ctx, booking.ID, supervisor.ID)
		require.NoError(t, err)

		_, err = models.SubmitServiceFeedback(ctx, booking.ID, customerId, &models.NewFeedback{Message: "still too early"})
		require.ErrorIs(t, err, utils.ErrInvalidState)

		booking, err = models.ConfirmServiceCompletion(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusServiceManagerConfirmed, booking.ServiceStatus)

		feedback, err := models.SubmitServiceFeedback(ctx, booking.ID, customerId, &models.NewFeedback{Message: "Rails fixed, runs smoothly"})
		require.NoError(t, err)
		_, err = models.SubmitServiceFeedback(ctx, booking.ID, customerId, &models.NewFeedback{Message: "once more"})
		require.ErrorIs(t, err, utils.ErrInvalidState)

		feedback, err = models.ReplyToServiceFeedback(ctx, feedback.ID, manager.ID, &models.FeedbackReply{Reply: "Thank you"})
		require.NoError(t, err)
		require.NotNil(t, feedback.Reply)
		_, err = models.ReplyToServiceFeedback(ctx, feedback.ID, manager.ID, &models.FeedbackReply{Reply: "again"})
		require.ErrorIs(t, err, utils.ErrInvalidState)

		booking, err = models.CloseServiceBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusCompleted, booking.ServiceStatus)
		_, err = models.CloseServiceBooking(ctx, booking.ID)
		require.ErrorIs(t, err, utils.ErrInvalidState)
	})

	t.Run("raw material debit spans lots", func(t *testing.T) {
		db := config.GetDB()
		first := models.RawMaterialStock{MaterialName: "Hinge", Quantity: decimal.NewFromInt(10), Unit: "pcs"}
		second := models.RawMaterialStock{MaterialName: "hinge", Quantity: decimal.NewFromInt(20), Unit: "pcs"}
		require.NoError(t, db.Create(&first).Error)
		require.NoError(t, db.Create(&second).Error)

		var entry *models.InventoryLog
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			entry, err = models.Ledger(tx).Debit(models.StockMovement{
				Class:         models.StockClassRawMaterial,
				Name:          "HINGE",
				Quantity:      decimal.NewFromInt(25),
				ReferenceType: "workshop",
				ReferenceId:   1,
			})
			return err
		})
		require.NoError(t, err)

		var remaining []models.RawMaterialStock
		require.NoError(t, db.Where("LOWER(material_name) = ?", "hinge").Order("id ASC").Find(&remaining).Error)
		require.Len(t, remaining, 1, "the oldest lot is used up and removed")
		assert.Equal(t, second.ID, remaining[0].ID)
		assert.True(t, remaining[0].Quantity.Equal(decimal.NewFromInt(5)), remaining[0].Quantity.String())

		assert.Equal(t, second.ID, entry.ItemId, "logged against the lot that still exists")
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(-25)), entry.Quantity.String())

		err = db.Transaction(func(tx *gorm.DB) error {
			_, err := models.Ledger(tx).Debit(models.StockMovement{
				Class:    models.StockClassRawMaterial,
				Name:     "hinge",
				Quantity: decimal.NewFromInt(6),
			})
			return err
		})
		require.ErrorIs(t, err, utils.ErrInsufficientStock)
		assert.True(t, materialBalance(t, ctx, "hinge").Equal(decimal.NewFromInt(5)))
	})
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("eurodoor-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("eurodoor-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=eurodoor_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
