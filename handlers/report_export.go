package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"portex.io/warranty/config"
	"portex.io/warranty/models"
)

// warrantyRegisterHeader is the column layout of the finance export.
var warrantyRegisterHeader = []string{
	"Warranty ID", "Project ID", "Item ID", "Client ID",
	"Start", "End", "Months", "Status", "Claim Deadline",
	"Claims", "Open Claims",
}

// ExportWarrantyRegister exports the warranty register for finance review,
// with each warranty's status derived at export time
// GET /api/v1/reports/warranties/export?format=xlsx|csv&project_id={uuid}
func ExportWarrantyRegister(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Preload("Claims").Order("created_at ASC")
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}
		query = query.Where("project_id = ?", projectID)
	}

	var warranties []models.Warranty
	if err := query.Find(&warranties).Error; err != nil {
		http.Error(w, "failed to fetch warranties", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	rows := make([][]string, 0, len(warranties))
	for i := range warranties {
		rows = append(rows, registerRow(&warranties[i], now))
	}

	switch r.URL.Query().Get("format") {
	case "csv":
		writeRegisterCSV(w, rows)
	default:
		writeRegisterExcel(w, rows)
	}
}

func registerRow(warranty *models.Warranty, now time.Time) []string {
	open := 0
	for _, claim := range warranty.Claims {
		if !claim.Status.Terminal() && claim.Status != models.ClaimStatusApproved {
			open++
		}
	}
	return []string{
		warranty.ID.String(),
		warranty.ProjectID.String(),
		warranty.ItemID.String(),
		warranty.ClientID,
		models.DateOf(warranty.WarrantyStart).Format("2006-01-02"),
		models.DateOf(warranty.WarrantyEnd).Format("2006-01-02"),
		strconv.Itoa(warranty.DurationMonths),
		string(warranty.StatusAt(now)),
		warranty.ClaimDeadline().Format("2006-01-02"),
		strconv.Itoa(len(warranty.Claims)),
		strconv.Itoa(open),
	}
}

func writeRegisterExcel(w http.ResponseWriter, rows [][]string) {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Warranties"
	file.SetSheetName("Sheet1", sheet)

	for col, title := range warrantyRegisterHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		file.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			file.SetCellValue(sheet, cell, value)
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("warranty_register_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func writeRegisterCSV(w http.ResponseWriter, rows [][]string) {
	filename := fmt.Sprintf("warranty_register_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	writer.Write(warrantyRegisterHeader)
	for _, row := range rows {
		writer.Write(row)
	}
	writer.Flush()
}
