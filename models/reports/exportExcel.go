package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/xuri/excelize/v2"
)

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExcelExporter interface {
	GetCellValues() []interface{}
}

// Workbook is an exported report ready to be streamed or archived.
type Workbook struct {
	Filename   string
	Data       []byte
	ArchiveUrl string
}

func derefString(s *string) string {
	return utils.DereferencePtr(s, "")
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

// exportExcel writes headings on row 1 and one row per record below.
func exportExcel[T ExcelExporter](sheetName string, data []T, headings ...string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, h := range headings {
		if err := f.SetCellValue(sheetName, columnName(i+1)+"1", h); err != nil {
			return nil, err
		}
	}

	rowNo := 2
	for _, d := range data {
		for i, value := range d.GetCellValues() {
			if err := f.SetCellValue(sheetName, columnName(i+1)+fmt.Sprint(rowNo), value); err != nil {
				return nil, err
			}
		}
		rowNo++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newWorkbook[T ExcelExporter](ctx context.Context, name string, data []T, headings []string) (*Workbook, error) {
	content, err := exportExcel(name, data, headings...)
	if err != nil {
		return nil, err
	}
	wb := &Workbook{
		Filename: fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102T150405")),
		Data:     content,
	}
	if config.ReportArchiveEnabled() && utils.GCSEnabled() {
		url, err := utils.UploadBytesToGCS(ctx, "reports/"+utils.GenerateUniqueFilename()+"_"+wb.Filename, content, ExcelContentType)
		if err != nil {
			config.LogError(config.GetLogger(), "exportExcel.go", "newWorkbook", "UploadBytesToGCS", wb.Filename, err)
		} else {
			wb.ArchiveUrl = url
		}
	}
	return wb, nil
}

func ExportOrderLinesReport(ctx context.Context, dateRange DateRange) (*Workbook, error) {
	rows, err := GetOrderLinesReport(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	return newWorkbook(ctx, "OrderLines", rows, orderLineHeadings)
}

func ExportSupplierReport(ctx context.Context) (*Workbook, error) {
	rows, err := GetSupplierReport(ctx)
	if err != nil {
		return nil, err
	}
	return newWorkbook(ctx, "Suppliers", rows, supplierHeadings)
}

func ExportServiceBookingReport(ctx context.Context, dateRange DateRange) (*Workbook, error) {
	rows, err := GetServiceBookingReport(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	return newWorkbook(ctx, "ServiceBookings", rows, serviceBookingHeadings)
}
