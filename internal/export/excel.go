package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cleanhive/internal/models"

	"github.com/xuri/excelize/v2"
)

// ScheduleToExcel создает Excel файл с расписанием уборок за период.
// Строки — слоты, колонки — даты, в ячейках — брони.
func (s *Service) ScheduleToExcel(ctx context.Context, startDate, endDate time.Time, slots []string, capacity int) (string, error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	dailyBookings, err := s.db.GetDailyBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Schedule"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("01/02/2006"), endDate.Format("01/02/2006")))

	dateHeaders := writeDateHeaders(f, sheetName, startDate, endDate)
	writeSlotHeaders(f, sheetName, slots)
	s.writeScheduleCells(f, sheetName, dailyBookings, slots, capacity, dateHeaders)

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 22)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateHeaders) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(s.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("Excel schedule created")
	return filePath, nil
}

func writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateHeaders := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("Jan 2"))
		dateHeaders[currentDate.Format("2006-01-02")] = col
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateHeaders
}

func writeSlotHeaders(f *excelize.File, sheetName string, slots []string) {
	slotStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, slot := range slots {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, slot)
		_ = f.SetCellStyle(sheetName, cell, cell, slotStyle)
		row++
	}
}

func (s *Service) writeScheduleCells(
	f *excelize.File, sheetName string,
	dailyBookings map[string][]*models.Booking,
	slots []string, capacity int,
	dateHeaders map[string]int,
) {
	for dateKey, bookings := range dailyBookings {
		col, exists := dateHeaders[dateKey]
		if !exists {
			continue
		}

		bySlot := make(map[string][]*models.Booking)
		for _, booking := range bookings {
			if booking.Status == models.StatusCancelled {
				continue
			}
			bySlot[booking.TimeSlot] = append(bySlot[booking.TimeSlot], booking)
		}

		row := 3
		for _, slot := range slots {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			slotBookings := bySlot[slot]

			var cellValue string
			if len(slotBookings) > 0 {
				for _, booking := range slotBookings {
					cellValue += fmt.Sprintf("#%d %s %s\n", booking.ID, booking.ServiceType, booking.Status)
				}
				cellValue += fmt.Sprintf("\nBooked: %d/%d", len(slotBookings), capacity)
			} else {
				cellValue = fmt.Sprintf("Open\n\nAvailable: %d/%d", capacity, capacity)
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)

			styleID, err := slotCellStyle(f, slotBookings, capacity)
			if err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

func slotCellStyle(f *excelize.File, slotBookings []*models.Booking, capacity int) (int, error) {
	alignment := &excelize.Alignment{
		Horizontal: "left",
		Vertical:   "top",
		WrapText:   true,
	}

	if len(slotBookings) == 0 {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFFFFF"}, Pattern: 1},
			Alignment: alignment,
		})
	}

	if len(slotBookings) >= capacity {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
			Alignment: alignment,
		})
	}

	for _, booking := range slotBookings {
		if booking.Status == models.StatusPending {
			return f.NewStyle(&excelize.Style{
				Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
				Alignment: alignment,
			})
		}
	}

	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: alignment,
	})
}
