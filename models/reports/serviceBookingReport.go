package reports

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/shopspring/decimal"
)

type ServiceBookingReportRow struct {
	BookingId      int             `json:"booking_id"`
	BookedAt       time.Time       `json:"booked_at"`
	CustomerName   *string         `json:"customer_name,omitempty"`
	DoorType       string          `json:"door_type"`
	Price          decimal.Decimal `json:"price"`
	PaymentStatus  string          `json:"payment_status"`
	ServiceStatus  string          `json:"service_status"`
	SupervisorName *string         `json:"supervisor_name,omitempty"`
	TechnicianName *string         `json:"technician_name,omitempty"`
}

var serviceBookingHeadings = []string{"Booking", "Date", "Customer", "Door Type", "Price", "Payment Status", "Service Status", "Supervisor", "Technician"}

func (r *ServiceBookingReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.BookingId,
		r.BookedAt.Format(dateLayout),
		derefString(r.CustomerName),
		r.DoorType,
		r.Price.InexactFloat64(),
		r.PaymentStatus,
		r.ServiceStatus,
		derefString(r.SupervisorName),
		derefString(r.TechnicianName),
	}
}

func GetServiceBookingReport(ctx context.Context, dateRange DateRange) ([]*ServiceBookingReportRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "ServiceBookings", started, map[string]any{"range": dateRange.String()})

	sql := `
SELECT
    sb.id AS booking_id,
    sb.created_at AS booked_at,
    c.name AS customer_name,
    sb.door_type,
    sb.price,
    sb.payment_status,
    sb.service_status,
    sup.name AS supervisor_name,
    tech.name AS technician_name
FROM
    service_bookings sb
    LEFT JOIN customers c ON c.id = sb.customer_id
    LEFT JOIN employees sup ON sup.id = sb.supervisor_id
    LEFT JOIN employees tech ON tech.id = sb.technician_id
WHERE
    sb.created_at BETWEEN @fromDate AND @toDate
ORDER BY sb.created_at, sb.id;
`
	var results []*ServiceBookingReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": dateRange.From,
		"toDate":   dateRange.To,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
