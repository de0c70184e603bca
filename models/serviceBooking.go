package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceLocation struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	County       string `json:"county"`
	PostalCode   string `json:"postal_code"`
	Instructions string `json:"instructions"`
}

// ServiceBooking has two independent axes: PaymentStatus and the linear ServiceStatus chain.
// ServiceStatus cannot move past payment_confirmed until PaymentStatus is confirmed.
type ServiceBooking struct {
	ID            int                                 `gorm:"primary_key" json:"id"`
	CustomerId    int                                 `gorm:"not null;index" json:"customer_id"`
	DoorType      string                              `gorm:"size:150;not null" json:"door_type"`
	Location      datatypes.JSONType[ServiceLocation] `json:"location_details"`
	Price         decimal.Decimal                     `gorm:"type:decimal(20,2);not null" json:"price"`
	PaymentCode   string                              `gorm:"size:20;not null" json:"payment_code"`
	PaymentStatus ServicePaymentStatus                `gorm:"size:20;not null;default:pending;index" json:"payment_status"`
	ServiceStatus ServiceStatus                       `gorm:"size:40;not null;default:requested;index" json:"service_status"`
	SupervisorId  *int                                `gorm:"index" json:"supervisor_id"`
	TechnicianId  *int                                `gorm:"index" json:"technician_id"`
	CreatedAt     time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewServiceBooking struct {
	DoorType    string          `json:"door_type" binding:"required" validate:"required,max=150"`
	Location    ServiceLocation `json:"location_details"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	PaymentCode string          `json:"payment_code" binding:"required" validate:"required"`
}

const serviceBookingEntity = "service_booking"

func (b *ServiceBooking) checkAdvance(to ServiceStatus) error {
	if err := requireTransition(serviceBookingEntity, b.ID, b.ServiceStatus, to, b.ServiceStatus.CanTransitionTo(to)); err != nil {
		return err
	}
	if to.HasReached(ServiceStatusAllocatedToSupervisor) && b.PaymentStatus != ServicePaymentStatusConfirmed {
		return utils.InvalidState("service booking %d payment has not been confirmed", b.ID)
	}
	return nil
}

// advance moves the booking one step along the service chain.
func (b *ServiceBooking) advance(ctx context.Context, tx *gorm.DB, to ServiceStatus, updates map[string]interface{}) error {
	from := b.ServiceStatus
	if err := b.checkAdvance(to); err != nil {
		return err
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["ServiceStatus"] = to
	if err := tx.Model(b).Updates(updates).Error; err != nil {
		return err
	}
	b.ServiceStatus = to
	return recordEvent(ctx, tx, EventServiceBookingTransitioned, serviceBookingEntity, b.ID, string(from), string(to), b)
}

func CreateServiceBooking(ctx context.Context, customerId int, input *NewServiceBooking) (*ServiceBooking, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	code := normalizePaymentCode(input.PaymentCode)
	if err := ValidateCustomerPaymentCode(code); err != nil {
		return nil, err
	}
	if !input.Price.IsPositive() {
		return nil, utils.InvalidInput("price must be greater than zero")
	}

	booking := ServiceBooking{
		CustomerId:    customerId,
		DoorType:      strings.TrimSpace(input.DoorType),
		Location:      datatypes.NewJSONType(input.Location),
		Price:         input.Price,
		PaymentCode:   code,
		PaymentStatus: ServicePaymentStatusPending,
		ServiceStatus: ServiceStatusRequested,
	}
	err := runTransition(ctx, "CreateServiceBooking", serviceBookingEntity, 0, func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return recordEvent(ctx, tx, EventServiceBookingTransitioned, serviceBookingEntity, booking.ID, "", string(booking.ServiceStatus), booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func advanceServiceBooking(ctx context.Context, name string, id int, fn func(tx *gorm.DB, booking *ServiceBooking) error) (*ServiceBooking, error) {
	var booking *ServiceBooking
	err := runTransition(ctx, name, serviceBookingEntity, id, func(tx *gorm.DB) error {
		var err error
		if booking, err = utils.FetchModelForUpdate[ServiceBooking](tx, "service booking", id); err != nil {
			return err
		}
		return fn(tx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmServicePayment confirms the payment axis and moves the booking to payment_confirmed.
func ConfirmServicePayment(ctx context.Context, id int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "ConfirmServicePayment", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if booking.PaymentStatus != ServicePaymentStatusPending {
			return utils.InvalidState("service booking %d payment is already %s", id, booking.PaymentStatus)
		}
		from := booking.PaymentStatus
		if err := tx.Model(booking).Update("payment_status", ServicePaymentStatusConfirmed).Error; err != nil {
			return err
		}
		booking.PaymentStatus = ServicePaymentStatusConfirmed
		if err := recordEvent(ctx, tx, EventServicePaymentConfirmed, serviceBookingEntity, booking.ID, string(from), string(booking.PaymentStatus), booking); err != nil {
			return err
		}
		return booking.advance(ctx, tx, ServiceStatusPaymentConfirmed, nil)
	})
}

func AllocateSupervisor(ctx context.Context, id int, supervisorId int) (*ServiceBooking, error) {
	if _, err := FindActiveEmployeeByRoleAndId(ctx, EmployeeRoleSupervisor, supervisorId); err != nil {
		return nil, err
	}
	return advanceServiceBooking(ctx, "AllocateSupervisor", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if err := booking.advance(ctx, tx, ServiceStatusAllocatedToSupervisor, map[string]interface{}{
			"SupervisorId": supervisorId,
		}); err != nil {
			return err
		}
		booking.SupervisorId = &supervisorId
		return nil
	})
}

func (b *ServiceBooking) requireSupervisor(supervisorId int) error {
	if b.SupervisorId == nil || *b.SupervisorId != supervisorId {
		return utils.Unauthorized("service booking %d is not allocated to supervisor %d", b.ID, supervisorId)
	}
	return nil
}

func (b *ServiceBooking) requireTechnician(technicianId int) error {
	if b.TechnicianId == nil || *b.TechnicianId != technicianId {
		return utils.Unauthorized("service booking %d is not assigned to technician %d", b.ID, technicianId)
	}
	return nil
}

// AssignTechnician is done by the booking's own supervisor.
func AssignTechnician(ctx context.Context, id int, supervisorId int, technicianId int) (*ServiceBooking, error) {
	if _, err := FindActiveEmployeeByRoleAndId(ctx, EmployeeRoleTechnician, technicianId); err != nil {
		return nil, err
	}
	return advanceServiceBooking(ctx, "AssignTechnician", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if err := booking.requireSupervisor(supervisorId); err != nil {
			return err
		}
		if err := booking.advance(ctx, tx, ServiceStatusTechnicianAssigned, map[string]interface{}{
			"TechnicianId": technicianId,
		}); err != nil {
			return err
		}
		booking.TechnicianId = &technicianId
		return nil
	})
}

func StartService(ctx context.Context, id int, technicianId int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "StartService", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if err := booking.requireTechnician(technicianId); err != nil {
			return err
		}
		return booking.advance(ctx, tx, ServiceStatusInProgress, nil)
	})
}

func MarkServiceRendered(ctx context.Context, id int, technicianId int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "MarkServiceRendered", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if err := booking.requireTechnician(technicianId); err != nil {
			return err
		}
		return booking.advance(ctx, tx, ServiceStatusRendered, nil)
	})
}

func SupervisorApproveService(ctx context.Context, id int, supervisorId int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "SupervisorApproveService", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		if err := booking.requireSupervisor(supervisorId); err != nil {
			return err
		}
		return booking.advance(ctx, tx, ServiceStatusSupervisorApproved, nil)
	})
}

// ConfirmServiceCompletion is the service manager's final confirmation. Feedback opens after it.
func ConfirmServiceCompletion(ctx context.Context, id int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "ConfirmServiceCompletion", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		return booking.advance(ctx, tx, ServiceStatusServiceManagerConfirmed, nil)
	})
}

func CloseServiceBooking(ctx context.Context, id int) (*ServiceBooking, error) {
	return advanceServiceBooking(ctx, "CloseServiceBooking", id, func(tx *gorm.DB, booking *ServiceBooking) error {
		return booking.advance(ctx, tx, ServiceStatusCompleted, nil)
	})
}

func GetServiceBooking(ctx context.Context, id int) (*ServiceBooking, error) {
	return utils.FetchModel[ServiceBooking](ctx, "service booking", id)
}

type ServiceBookingFilter struct {
	CustomerId    *int
	SupervisorId  *int
	TechnicianId  *int
	ServiceStatus *ServiceStatus
	PaymentStatus *ServicePaymentStatus
}

func ListServiceBookings(ctx context.Context, filter ServiceBookingFilter) ([]*ServiceBooking, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if filter.CustomerId != nil {
		dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
	}
	if filter.SupervisorId != nil {
		dbCtx = dbCtx.Where("supervisor_id = ?", *filter.SupervisorId)
	}
	if filter.TechnicianId != nil {
		dbCtx = dbCtx.Where("technician_id = ?", *filter.TechnicianId)
	}
	if filter.ServiceStatus != nil {
		dbCtx = dbCtx.Where("service_status = ?", *filter.ServiceStatus)
	}
	if filter.PaymentStatus != nil {
		dbCtx = dbCtx.Where("payment_status = ?", *filter.PaymentStatus)
	}
	var results []*ServiceBooking
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
