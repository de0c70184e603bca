package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDateRangeDefaults(t *testing.T) {
	r, err := ParseDateRange("", "")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), r.To, time.Minute)
	assert.True(t, r.From.Before(r.To))
	assert.InDelta(t, 30*24, r.To.Sub(r.From).Hours(), 25)
}

func TestParseDateRangeInclusiveBounds(t *testing.T) {
	r, err := ParseDateRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 31, r.To.Day())
	assert.Equal(t, 23, r.To.Hour())
	assert.Equal(t, "2026-01-01_2026-01-31", r.String())
}

func TestParseDateRangeRejectsBadInput(t *testing.T) {
	_, err := ParseDateRange("01/02/2026", "")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = ParseDateRange("", "tomorrow")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = ParseDateRange("2026-02-01", "2026-01-01")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestExportExcelWritesHeadingsAndRows(t *testing.T) {
	paid := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	rows := []*SupplierReportRow{
		{
			Supplier:        "steel@suppliers.co.ke",
			RequestCount:    3,
			AcceptedCount:   2,
			RejectedCount:   1,
			TotalCost:       decimal.NewFromInt(5000),
			TotalPaid:       decimal.NewFromInt(5000),
			OutstandingCost: decimal.Zero,
			LastPaymentDate: &paid,
		},
		{Supplier: "timber@suppliers.co.ke", RequestCount: 1},
	}

	data, err := exportExcel("Suppliers", rows, supplierHeadings...)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Suppliers")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, supplierHeadings, got[0])
	assert.Equal(t, "steel@suppliers.co.ke", got[1][0])
	assert.Equal(t, "3", got[1][1])
	assert.Equal(t, "5000", got[1][4])
	assert.Equal(t, "2026-03-04", got[1][7])
	assert.Equal(t, "timber@suppliers.co.ke", got[2][0])
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", columnName(1))
	assert.Equal(t, "Z", columnName(26))
	assert.Equal(t, "AA", columnName(27))
}
