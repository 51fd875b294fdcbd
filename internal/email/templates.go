package email

import (
	"bytes"
	"html/template"

	"cleanhive/internal/models"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Your cleaning is booked. Here are the details:</p>
  <ul>
    <li>Service: {{.ServiceType}}</li>
    <li>Date: {{.Date}}</li>
    <li>Time: {{.TimeSlot}}</li>
    <li>Address: {{.Address}}</li>
    <li>Total: ${{.Amount}}</li>
    <li>Booking number: {{.BookingID}}</li>
  </ul>
  <p>We will confirm your cleaner shortly. You can cancel any time before the visit from your account.</p>
  <p>Thank you.</p>
</body>
</html>`

const bookingStatusTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Booking #{{.BookingID}} for {{.Date}} at {{.TimeSlot}} is now <b>{{.StatusLabel}}</b>.</p>
  <p>Thank you.</p>
</body>
</html>`

const leadWelcomeTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Thanks for reaching out. One of our coordinators will contact you within one business day to talk through your cleaning needs.</p>
  <p>Thank you.</p>
</body>
</html>`

const reviewRequestTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Your cleaning (booking #{{.BookingID}}) is done. How did we do?</p>
  <p>Leave a rating from your account so we can match you with the right cleaner next time.</p>
  <p>Thank you.</p>
</body>
</html>`

var (
	bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))
	bookingStatusTmpl       = template.Must(template.New("booking_status").Parse(bookingStatusTemplate))
	leadWelcomeTmpl         = template.Must(template.New("lead_welcome").Parse(leadWelcomeTemplate))
	reviewRequestTmpl       = template.Must(template.New("review_request").Parse(reviewRequestTemplate))
)

type bookingEmailData struct {
	Name        string
	ServiceType string
	Date        string
	TimeSlot    string
	Address     string
	Amount      string
	BookingID   int64
	StatusLabel string
}

func BuildBookingConfirmationHTML(user *models.User, booking *models.Booking) (string, error) {
	data := bookingEmailData{
		Name:        user.FullName,
		ServiceType: booking.ServiceType,
		Date:        booking.ScheduledDate.Format("Monday, January 2, 2006"),
		TimeSlot:    booking.TimeSlot,
		Address:     booking.Address,
		Amount:      booking.Amount.StringFixed(2),
		BookingID:   booking.ID,
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func BuildBookingStatusHTML(user *models.User, booking *models.Booking) (string, error) {
	data := bookingEmailData{
		Name:        user.FullName,
		Date:        booking.ScheduledDate.Format("Monday, January 2, 2006"),
		TimeSlot:    booking.TimeSlot,
		BookingID:   booking.ID,
		StatusLabel: statusLabel(booking.Status),
	}
	var buf bytes.Buffer
	if err := bookingStatusTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func BuildLeadWelcomeHTML(lead *models.Lead) (string, error) {
	var buf bytes.Buffer
	if err := leadWelcomeTmpl.Execute(&buf, struct{ Name string }{Name: lead.Name}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func BuildReviewRequestHTML(name string, bookingID int64) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name      string
		BookingID int64
	}{Name: name, BookingID: bookingID}
	if err := reviewRequestTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statusLabel(status string) string {
	switch status {
	case models.StatusPending:
		return "pending confirmation"
	case models.StatusConfirmed:
		return "confirmed"
	case models.StatusInProgress:
		return "in progress"
	case models.StatusCompleted:
		return "completed"
	case models.StatusCancelled:
		return "cancelled"
	default:
		return status
	}
}
