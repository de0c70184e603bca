package models

import (
	"testing"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckAdvanceRequiresNextStep(t *testing.T) {
	b := &ServiceBooking{ID: 3, ServiceStatus: ServiceStatusRequested, PaymentStatus: ServicePaymentStatusPending}

	assert.NoError(t, b.checkAdvance(ServiceStatusPaymentConfirmed))
	assert.ErrorIs(t, b.checkAdvance(ServiceStatusInProgress), utils.ErrInvalidState)
	assert.ErrorIs(t, b.checkAdvance(ServiceStatusRequested), utils.ErrInvalidState)
}

func TestCheckAdvanceRequiresConfirmedPayment(t *testing.T) {
	b := &ServiceBooking{ID: 4, ServiceStatus: ServiceStatusPaymentConfirmed, PaymentStatus: ServicePaymentStatusPending}
	assert.ErrorIs(t, b.checkAdvance(ServiceStatusAllocatedToSupervisor), utils.ErrInvalidState)

	b.PaymentStatus = ServicePaymentStatusConfirmed
	assert.NoError(t, b.checkAdvance(ServiceStatusAllocatedToSupervisor))
}

func TestCartTotal(t *testing.T) {
	items := []*CartItem{
		{Quantity: 2, Price: decimal.RequireFromString("1500.50")},
		{Quantity: 1, Price: decimal.NewFromInt(300)},
	}
	assert.True(t, cartTotal(items).Equal(decimal.RequireFromString("3301")))
	assert.True(t, cartTotal(nil).IsZero())
	assert.True(t, (&Cart{Items: items}).Total().Equal(decimal.RequireFromString("3301")))
}
