package main

import (
	"github.com/evanbosire/Eurodoor-Backend/middlewares"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/gin-gonic/gin"
)

type orderItemView struct {
	*models.OrderItem
	InStock *int `json:"in_stock,omitempty"`
}

type orderView struct {
	*models.Order
	Items    []*orderItemView `json:"items"`
	Customer *models.Customer `json:"customer,omitempty"`
}

type serviceBookingView struct {
	*models.ServiceBooking
	Customer   *models.Customer `json:"customer,omitempty"`
	Supervisor *models.Employee `json:"supervisor,omitempty"`
	Technician *models.Employee `json:"technician,omitempty"`
}

// orderViews attaches customers and current catalog stock to staff order listings.
func orderViews(c *gin.Context, orders []*models.Order) ([]*orderView, error) {
	var customerIds, productIds []int
	for _, order := range orders {
		customerIds = append(customerIds, order.CustomerId)
		for _, item := range order.Items {
			productIds = append(productIds, item.ProductId)
		}
	}
	ctx := c.Request.Context()
	customers, err := middlewares.GetCustomerMap(ctx, utils.UniqueSlice(customerIds))
	if err != nil {
		return nil, err
	}
	products, err := middlewares.GetProductMap(ctx, utils.UniqueSlice(productIds))
	if err != nil {
		return nil, err
	}

	views := make([]*orderView, 0, len(orders))
	for _, order := range orders {
		view := &orderView{Order: order, Customer: customers[order.CustomerId]}
		for _, item := range order.Items {
			line := &orderItemView{OrderItem: item}
			if product, ok := products[item.ProductId]; ok {
				line.InStock = &product.Quantity
			}
			view.Items = append(view.Items, line)
		}
		views = append(views, view)
	}
	return views, nil
}

func serviceBookingViews(c *gin.Context, bookings []*models.ServiceBooking) ([]*serviceBookingView, error) {
	var customerIds, employeeIds []int
	for _, booking := range bookings {
		customerIds = append(customerIds, booking.CustomerId)
		if booking.SupervisorId != nil {
			employeeIds = append(employeeIds, *booking.SupervisorId)
		}
		if booking.TechnicianId != nil {
			employeeIds = append(employeeIds, *booking.TechnicianId)
		}
	}
	ctx := c.Request.Context()
	customers, err := middlewares.GetCustomerMap(ctx, utils.UniqueSlice(customerIds))
	if err != nil {
		return nil, err
	}
	employees, err := middlewares.GetEmployeeMap(ctx, utils.UniqueSlice(employeeIds))
	if err != nil {
		return nil, err
	}

	views := make([]*serviceBookingView, 0, len(bookings))
	for _, booking := range bookings {
		view := &serviceBookingView{ServiceBooking: booking, Customer: customers[booking.CustomerId]}
		if booking.SupervisorId != nil {
			view.Supervisor = employees[*booking.SupervisorId]
		}
		if booking.TechnicianId != nil {
			view.Technician = employees[*booking.TechnicianId]
		}
		views = append(views, view)
	}
	return views, nil
}
