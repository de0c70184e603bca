package main

import (
	"net/http"

	"github.com/evanbosire/Eurodoor-Backend/models/reports"
	"github.com/gin-gonic/gin"
)

func reportDateRange(c *gin.Context) (reports.DateRange, bool) {
	dateRange, err := reports.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return dateRange, false
	}
	return dateRange, true
}

// sendWorkbook streams an exported workbook as an attachment.
func sendWorkbook(c *gin.Context, wb *reports.Workbook, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if wb.ArchiveUrl != "" {
		c.Header("X-Report-Archive", wb.ArchiveUrl)
	}
	c.Header("Content-Disposition", "attachment; filename="+wb.Filename)
	c.Data(http.StatusOK, reports.ExcelContentType, wb.Data)
}

func orderLinesReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dateRange, ok := reportDateRange(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if c.Query("format") == "xlsx" {
			wb, err := reports.ExportOrderLinesReport(ctx, dateRange)
			sendWorkbook(c, wb, err)
			return
		}
		rows, err := reports.GetOrderLinesReport(ctx, dateRange)
		respond(c, http.StatusOK, rows, err)
	}
}

func supplierReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if c.Query("format") == "xlsx" {
			wb, err := reports.ExportSupplierReport(ctx)
			sendWorkbook(c, wb, err)
			return
		}
		rows, err := reports.GetSupplierReport(ctx)
		respond(c, http.StatusOK, rows, err)
	}
}

func serviceBookingReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dateRange, ok := reportDateRange(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if c.Query("format") == "xlsx" {
			wb, err := reports.ExportServiceBookingReport(ctx, dateRange)
			sendWorkbook(c, wb, err)
			return
		}
		rows, err := reports.GetServiceBookingReport(ctx, dateRange)
		respond(c, http.StatusOK, rows, err)
	}
}
