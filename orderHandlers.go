package main

import (
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
)

type dispatchRequest struct {
	DriverId int `json:"driver_id" binding:"required"`
}

/* Catalog */

func listActiveProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListActiveProducts(c.Request.Context())
		respond(c, http.StatusOK, products, err)
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context())
		respond(c, http.StatusOK, products, err)
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		respond(c, http.StatusCreated, product, err)
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.UpdateProductInput
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		respond(c, http.StatusOK, product, err)
	}
}

func transferStoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStoreTransfer
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.TransferStoreToCatalog(c.Request.Context(), &input)
		respond(c, http.StatusOK, product, err)
	}
}

/* Cart and checkout */

func getCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := models.GetCart(c.Request.Context(), customerId(c))
		respond(c, http.StatusOK, cart, err)
	}
}

func addToCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCartItem
		if !bindJSON(c, &input) {
			return
		}
		cart, err := models.AddToCart(c.Request.Context(), customerId(c), &input)
		respond(c, http.StatusOK, cart, err)
	}
}

func removeCartItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		cart, err := models.RemoveCartItem(c.Request.Context(), customerId(c), id)
		respond(c, http.StatusOK, cart, err)
	}
}

func checkoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CheckoutInput
		if !bindJSON(c, &input) {
			return
		}
		order, err := models.Checkout(c.Request.Context(), customerId(c), &input)
		respond(c, http.StatusCreated, order, err)
	}
}

/* Orders */

func customerOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := customerId(c)
		orders, err := models.ListOrders(c.Request.Context(), models.OrderFilter{
			CustomerId: &id,
			Status:     queryValue[models.OrderStatus](c, "status"),
		})
		respond(c, http.StatusOK, orders, err)
	}
}

func listOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := models.ListOrders(c.Request.Context(), models.OrderFilter{
			CustomerId:    queryInt(c, "customer_id"),
			Status:        queryValue[models.OrderStatus](c, "status"),
			PaymentStatus: queryValue[models.PaymentStatus](c, "payment_status"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		views, err := orderViews(c, orders)
		respond(c, http.StatusOK, views, err)
	}
}

func listPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := models.ListPayments(c.Request.Context(), queryValue[models.PaymentStatus](c, "status"))
		respond(c, http.StatusOK, payments, err)
	}
}

func confirmPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		payment, err := models.ConfirmPayment(c.Request.Context(), id)
		respond(c, http.StatusOK, payment, err)
	}
}

func releaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		order, err := models.ReleaseOrder(c.Request.Context(), id)
		respond(c, http.StatusOK, order, err)
	}
}

func dispatchOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req dispatchRequest
		if !bindJSON(c, &req) {
			return
		}
		dispatch, err := models.DispatchOrder(c.Request.Context(), id, req.DriverId)
		respond(c, http.StatusOK, dispatch, err)
	}
}

func driverDispatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatches, err := models.ListDriverDispatches(c.Request.Context(), employeeId(c))
		respond(c, http.StatusOK, dispatches, err)
	}
}

func markDeliveredHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		dispatch, err := models.MarkDelivered(c.Request.Context(), id, employeeId(c))
		respond(c, http.StatusOK, dispatch, err)
	}
}

/* Feedback and receipts */

func submitFeedbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.NewFeedback
		if !bindJSON(c, &input) {
			return
		}
		feedback, err := models.SubmitFeedback(c.Request.Context(), id, customerId(c), &input)
		respond(c, http.StatusCreated, feedback, err)
	}
}

func customerFeedbacksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := customerId(c)
		feedbacks, err := models.ListFeedbacks(c.Request.Context(), &id)
		respond(c, http.StatusOK, feedbacks, err)
	}
}

func listFeedbacksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		feedbacks, err := models.ListFeedbacks(c.Request.Context(), queryInt(c, "customer_id"))
		respond(c, http.StatusOK, feedbacks, err)
	}
}

func replyFeedbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input models.FeedbackReply
		if !bindJSON(c, &input) {
			return
		}
		feedback, err := models.ReplyToFeedback(c.Request.Context(), id, employeeId(c), &input)
		respond(c, http.StatusOK, feedback, err)
	}
}

func customerOrderReceiptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		owner := customerId(c)
		receipt, err := models.GetOrderReceipt(c.Request.Context(), id, &owner)
		respond(c, http.StatusOK, receipt, err)
	}
}

func orderReceiptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		receipt, err := models.GetOrderReceipt(c.Request.Context(), id, nil)
		respond(c, http.StatusOK, receipt, err)
	}
}
