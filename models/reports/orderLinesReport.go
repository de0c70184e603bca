package reports

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/shopspring/decimal"
)

type OrderLineReportRow struct {
	OrderId       int             `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	OrderDate     time.Time       `json:"order_date"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	ProductId     int             `json:"product_id"`
	Title         string          `json:"title"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus *string         `json:"payment_status,omitempty"`
}

var orderLineHeadings = []string{"Order", "Date", "Customer", "Product", "Quantity", "Price", "Subtotal", "Order Status", "Payment Status"}

func (r *OrderLineReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.OrderNumber,
		r.OrderDate.Format(dateLayout),
		derefString(r.CustomerName),
		r.Title,
		r.Quantity,
		r.Price.InexactFloat64(),
		r.Subtotal.InexactFloat64(),
		r.OrderStatus,
		derefString(r.PaymentStatus),
	}
}

// GetOrderLinesReport lists every order line placed within the range with its customer and payment state.
func GetOrderLinesReport(ctx context.Context, dateRange DateRange) ([]*OrderLineReportRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "OrderLines", started, map[string]any{"range": dateRange.String()})

	sql := `
SELECT
    o.id AS order_id,
    o.order_number,
    o.created_at AS order_date,
    c.name AS customer_name,
    oi.product_id,
    oi.title,
    oi.quantity,
    oi.price,
    oi.subtotal,
    o.status AS order_status,
    p.status AS payment_status
FROM
    order_items oi
    JOIN orders o ON o.id = oi.order_id
    LEFT JOIN customers c ON c.id = o.customer_id
    LEFT JOIN payments p ON p.id = o.payment_id
WHERE
    o.created_at BETWEEN @fromDate AND @toDate
ORDER BY o.created_at, o.id, oi.id;
`
	var results []*OrderLineReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": dateRange.From,
		"toDate":   dateRange.To,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
