package products

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"agroadmin/models"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Name", "Price", "Category", "Subcategory", "Key Ingredients", "Quantity", "Last Updated"}

func lastUpdated(p models.Product) string {
	if p.LastUpdated.IsZero() {
		return ""
	}
	return p.LastUpdated.Format(time.RFC3339)
}

func exportRow(p models.Product) []string {
	return []string{
		p.Title,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		p.Category,
		p.Subcategory,
		p.KeyIngredients,
		strconv.Itoa(p.Quantity),
		lastUpdated(p),
	}
}

// CSV renders the inventory spreadsheet as CSV.
func CSV(list []models.Product) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := w.Write(exportRow(p)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const inventorySheet = "Inventory"

// XLSX renders the same spreadsheet as an Excel workbook with typed price and quantity cells.
func XLSX(list []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{p.Title, p.Price, p.Category, p.Subcategory, p.KeyIngredients, p.Quantity, lastUpdated(p)}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(inventorySheet, "A", "A", 32); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
