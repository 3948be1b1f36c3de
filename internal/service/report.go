package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Numzn/station-main/internal/models"
)

// 导出时最多读取的读数条数
const reportMaxReadings = 1000

const (
	sheetReadings = "Readings"
	sheetRefills  = "Refills"
)

var (
	readingHeaders = []string{
		"Date", "Operator",
		"Petrol Pump Sales (L)", "Petrol Tank Sales (L)", "Petrol Closing (L)", "Petrol Dip (m)", "Petrol Variance (L)",
		"Diesel Pump Sales (L)", "Diesel Tank Sales (L)", "Diesel Closing (L)", "Diesel Dip (m)", "Diesel Variance (L)",
	}
	refillHeaders = []string{
		"Date", "Tank", "Invoice", "Initial Dip (L)", "Expected (L)", "Final Dip (L)",
		"Actual (L)", "Variance (L)", "Variance (%)", "Status", "Operator", "Notes",
	}
)

// ReportService 报表导出
type ReportService struct {
	readings ReadingStore
	refills  RefillStore
}

// NewReportService 创建报表服务
func NewReportService(readings ReadingStore, refills RefillStore) *ReportService {
	return &ReportService{readings: readings, refills: refills}
}

// ExportXLSX 导出 [from, to] 日期范围内的读数和卸油记录
func (s *ReportService) ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		from, to = to, from
	}

	readings, err := s.readings.List(ctx, &from, &to, reportMaxReadings, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	refills, err := s.refills.ListBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("fetch refills: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetReadings); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetRefills); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeRows(f, sheetReadings, readingHeaders, headerStyle, readingRows(readings)); err != nil {
		return nil, err
	}
	if err := writeRows(f, sheetRefills, refillHeaders, headerStyle, refillRows(refills)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, headers []string, headerStyle int, rows [][]interface{}) error {
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	lastColName, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastColName, 16)
}

func readingRows(readings []*models.Reading) [][]interface{} {
	rows := make([][]interface{}, 0, len(readings))
	// 按日期正序输出
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		row := []interface{}{models.DateKey(r.Date), r.Operator}
		for _, fuel := range models.FuelTypes {
			t := r.Tank(fuel)
			row = append(row,
				t.PumpSales.InexactFloat64(),
				t.TankSales.InexactFloat64(),
				t.Closing.InexactFloat64(),
				t.DipReading.InexactFloat64(),
				t.Variance.InexactFloat64(),
			)
		}
		rows = append(rows, row)
	}
	return rows
}

func refillRows(refills []*models.TankRefill) [][]interface{} {
	rows := make([][]interface{}, 0, len(refills))
	for _, r := range refills {
		rows = append(rows, []interface{}{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.TankType.Title(),
			r.InvoiceNumber,
			r.InitialDip.InexactFloat64(),
			r.ExpectedDelivery.InexactFloat64(),
			r.FinalDip.InexactFloat64(),
			r.ActualDelivered.InexactFloat64(),
			r.Variance.InexactFloat64(),
			r.VariancePercent.InexactFloat64(),
			string(r.Status),
			r.Operator,
			r.Notes,
		})
	}
	return rows
}
