package reports

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/shopspring/decimal"
)

const supplierReportCacheKey = "Report:Suppliers"

type SupplierReportRow struct {
	Supplier        string          `json:"supplier"`
	RequestCount    int             `json:"request_count"`
	AcceptedCount   int             `json:"accepted_count"`
	RejectedCount   int             `json:"rejected_count"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	OutstandingCost decimal.Decimal `json:"outstanding_cost"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
}

var supplierHeadings = []string{"Supplier", "Requests", "Accepted", "Rejected", "Total Cost", "Paid", "Outstanding", "Last Payment"}

func (r *SupplierReportRow) GetCellValues() []interface{} {
	lastPayment := ""
	if r.LastPaymentDate != nil {
		lastPayment = r.LastPaymentDate.Format(dateLayout)
	}
	return []interface{}{
		r.Supplier,
		r.RequestCount,
		r.AcceptedCount,
		r.RejectedCount,
		r.TotalCost.InexactFloat64(),
		r.TotalPaid.InexactFloat64(),
		r.OutstandingCost.InexactFloat64(),
		lastPayment,
	}
}

// GetSupplierReport totals raw material procurement per supplier. Results are cached briefly in redis.
func GetSupplierReport(ctx context.Context) ([]*SupplierReportRow, error) {
	var cached []*SupplierReportRow
	if ok, err := cacheGet(supplierReportCacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	started := time.Now()
	defer logSlowReport(ctx, "Suppliers", started, nil)

	sql := `
SELECT
    supplier,
    COUNT(id) AS request_count,
    SUM(CASE WHEN status = 'accepted' THEN 1 ELSE 0 END) AS accepted_count,
    SUM(CASE WHEN status IN ('rejected', 'rejected-by-inventory') THEN 1 ELSE 0 END) AS rejected_count,
    COALESCE(SUM(CASE WHEN status = 'accepted' THEN total_cost ELSE 0 END), 0) AS total_cost,
    COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN amount_paid ELSE 0 END), 0) AS total_paid,
    COALESCE(SUM(CASE WHEN status = 'accepted' AND payment_status = 'unpaid' THEN total_cost ELSE 0 END), 0) AS outstanding_cost,
    MAX(payment_date) AS last_payment_date
FROM
    raw_material_requests
GROUP BY
    supplier
ORDER BY supplier;
`
	var results []*SupplierReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&results).Error; err != nil {
		return nil, err
	}
	if err := cacheSet(supplierReportCacheKey, results, reportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "supplierReport.go", "GetSupplierReport", "cacheSet", nil, err)
	}
	return results, nil
}
