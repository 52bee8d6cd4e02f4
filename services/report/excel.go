package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the column order of the bulk export sheet.
var ExportHeader = []string{
	"Instance ID",
	"Status",
	"Submitted At",
	"Operator",
	"Leader",
	"Decided At",
	"Sector",
	"Checklist Title",
	"Item ID",
	"Question",
	"Answer",
	"Comment",
}

// RenderExcel renders export rows into a spreadsheet and returns the bytes.
func RenderExcel(rows []ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here, WriteTo needs the file open.

	sheetName := "Checklist Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{
			row.InstanceID,
			row.Status,
			row.SubmittedAt,
			row.Operator,
			row.Leader,
			row.DecidedAt,
			row.Sector,
			row.TemplateTitle,
			row.ItemID,
			row.Question,
			row.Answer,
			row.Comment,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
