package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cleanhive/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService mirrors bookings and the cleaner schedule into a spreadsheet
// the operations team reads. All writes go through the outbox worker.
type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string
}

func NewSheetsService(credentialsFile, bookingsSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:         srv,
		bookingsSheetID: bookingsSheetID,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, "Bookings!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

func bookingRowValues(b *models.Booking) []interface{} {
	providerID := int64(0)
	if b.ProviderID != nil {
		providerID = *b.ProviderID
	}
	return []interface{}{
		b.ID,
		b.CustomerID,
		providerID,
		b.ServiceType,
		b.ScheduledDate.Format("2006-01-02"),
		b.TimeSlot,
		b.Status,
		b.Address,
		b.ZipCode,
		b.Amount.StringFixed(2),
		b.CreatedAt.Format("2006-01-02 15:04:05"),
		b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ReplaceBookingsSheet полностью перезаписывает лист бронирований
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error {
	var values [][]interface{}

	headers := []interface{}{"ID", "Customer ID", "Provider ID", "Service", "Date", "Slot", "Status", "Address", "Zip", "Amount", "Created At", "Updated At"}
	values = append(values, headers)

	for _, b := range bookings {
		values = append(values, bookingRowValues(b))
	}

	// Clear first so rows removed from the source do not linger
	_, err := s.service.Spreadsheets.Values.Clear(s.bookingsSheetID, "Bookings!A:L", &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("Bookings!A1:L%d", len(values))
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()

	return err
}

// AppendBooking добавляет новое бронирование
func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	rangeData := "Bookings!A:A"
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpdateScheduleSheet перерисовывает лист расписания: строки — дни, колонки — слоты.
func (s *SheetsService) UpdateScheduleSheet(ctx context.Context, startDate, endDate time.Time, dailyBookings map[string][]*models.Booking, slots []string) error {
	var values [][]interface{}

	headers := []interface{}{"Date"}
	for _, slot := range slots {
		headers = append(headers, slot)
	}
	values = append(values, headers)

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		row := []interface{}{dateStr}

		bySlot := make(map[string]int)
		for _, b := range dailyBookings[dateStr] {
			if b.Status == models.StatusCancelled {
				continue
			}
			bySlot[b.TimeSlot]++
		}

		for _, slot := range slots {
			if n := bySlot[slot]; n > 0 {
				row = append(row, fmt.Sprintf("%d booked", n))
			} else {
				row = append(row, "")
			}
		}
		values = append(values, row)
	}

	endCol := string(rune('A' + len(slots)))
	rangeData := fmt.Sprintf("Schedule!A1:%s%d", endCol, len(values))
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()

	return err
}
