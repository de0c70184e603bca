package main

import (
	"context"
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

type allocateSupervisorRequest struct {
	SupervisorId int `json:"supervisor_id" binding:"required"`
}

type assignTechnicianRequest struct {
	TechnicianId int `json:"technician_id" binding:"required"`
}

func createServiceBookingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewServiceBooking
		if !bindJSON(c, &input) {
			return
		}
		booking, err := models.CreateServiceBooking(c.Request.Context(), customerId(c), &input)
		respond(c, http.StatusCreated, booking, err)
	}
}

func customerServiceBookingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := customerId(c)
		bookings, err := models.ListServiceBookings(c.Request.Context(), models.ServiceBookingFilter{
			CustomerId:    &id,
			ServiceStatus: queryValue[models.ServiceStatus](c, "service_status"),
		})
		respond(c, http.StatusOK, bookings, err)
	}
}

func listServiceBookingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := models.ListServiceBookings(c.Request.Context(), models.ServiceBookingFilter{
			CustomerId:    queryInt(c, "customer_id"),
			SupervisorId:  queryInt(c, "supervisor_id"),
			TechnicianId:  queryInt(c, "technician_id"),
			ServiceStatus: queryValue[models.ServiceStatus](c, "service_status"),
			PaymentStatus: queryValue[models.ServicePaymentStatus](c, "payment_status"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		views, err := serviceBookingViews(c, bookings)
		respond(c, http.StatusOK, views, err)
	}
}

// assignedServiceBookingsHandler lists the caller's own bookings, as supervisor or technician.
func assignedServiceBookingsHandler(role models.EmployeeRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := employeeId(c)
		filter := models.ServiceBookingFilter{
			ServiceStatus: queryValue[models.ServiceStatus](c, "service_status"),
		}
		if role == models.EmployeeRoleSupervisor {
			filter.SupervisorId = &id
		} else {
			filter.TechnicianId = &id
		}
		bookings, err := models.ListServiceBookings(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		views, err := serviceBookingViews(c, bookings)
		respond(c, http.StatusOK, views, err)
	}
}

func serviceBookingAction(fn func(ctx context.Context, id int, actorId int) (*models.ServiceBooking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		booking, err := fn(c.Request.Context(), id, employeeId(c))
		respond(c, http.StatusOK, booking, err)
	}
}

func confirmServicePaymentHandler() gin.HandlerFunc {
	return serviceBookingAction(func(ctx context.Context, id int, _ int) (*models.ServiceBooking, error) {
		return models.ConfirmServicePayment(ctx, id)
	})
}

func allocateSupervisorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req allocateSupervisorRequest
		if !bindJSON(c, &req) {
			return
		}
		booking, err := models.AllocateSupervisor(c.Request.Context(), id, req.SupervisorId)
		respond(c, http.StatusOK, booking, err)
	}
}

func assignTechnicianHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req assignTechnicianRequest
		if !bindJSON(c, &req) {
			return
		}
		booking, err := models.AssignTechnician(c.Request.Context(), id, employeeId(c), req.TechnicianId)
		respond(c, http.StatusOK, booking, err)
	}
}

func startServiceHandler() gin.HandlerFunc {
	return serviceBookingAction(models.StartService)
}

func markServiceRenderedHandler() gin.HandlerFunc {
	return serviceBookingAction(models.MarkServiceRendered)
}

func supervisorApproveServiceHandler() gin.HandlerFunc {
	return serviceBookingAction(models.SupervisorApproveService)
}

func confirmServiceCompletionHandler() gin.HandlerFunc {
	return serviceBookingAction(func(ctx context.Context, id int, _ int) (*models.ServiceBooking, error) {
		return models.ConfirmServiceCompletion(ctx, id)
	})
}

func closeServiceBookingHandler() gin.HandlerFunc {
	return serviceBookingAction(func(ctx context.Context, id int, _ int) (*models.ServiceBooking, error) {
		return models.CloseServiceBooking(ctx, id)
	})
}

func submitServiceFeedbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.NewFeedback
		if !bindJSON(c, &input) {
			return
		}
		feedback, err := models.SubmitServiceFeedback(c.Request.Context(), id, customerId(c), &input)
		respond(c, http.StatusCreated, feedback, err)
	}
}

func listServiceFeedbacksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		feedbacks, err := models.ListServiceFeedbacks(c.Request.Context())
		respond(c, http.StatusOK, feedbacks, err)
	}
}

func replyServiceFeedbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.FeedbackReply
		if !bindJSON(c, &input) {
			return
		}
		feedback, err := models.ReplyToServiceFeedback(c.Request.Context(), id, employeeId(c), &input)
		respond(c, http.StatusOK, feedback, err)
	}
}

func customerServiceReceiptsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		receipts, err := models.ListServiceReceipts(c.Request.Context(), customerId(c))
		respond(c, http.StatusOK, receipts, err)
	}
}
