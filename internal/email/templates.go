package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type confirmationData struct {
	Name     string
	Model    string
	Datetime string
	Phone    string
	LeadID   string
	MeetLink string
	HasQR    bool
}

func renderConfirmation(data confirmationData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/confirmation.html")
	if err != nil {
		return "", fmt.Errorf("parse confirmation template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "confirmation.html", data); err != nil {
		return "", fmt.Errorf("execute confirmation template: %w", err)
	}
	return buf.String(), nil
}

// plainConfirmation is the text/plain fallback body.
func plainConfirmation(data confirmationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", data.Name)
	b.WriteString("Your appointment has been confirmed!\n\n")
	b.WriteString("Appointment Details:\n")
	fmt.Fprintf(&b, "- Car Model: %s\n", data.Model)
	fmt.Fprintf(&b, "- Date & Time: %s\n", data.Datetime)
	fmt.Fprintf(&b, "- Phone: %s\n", data.Phone)
	fmt.Fprintf(&b, "- Reference ID: %s\n\n", data.LeadID)
	if data.MeetLink != "" {
		fmt.Fprintf(&b, "Join Meeting: %s\n\n", data.MeetLink)
	}
	b.WriteString("We look forward to seeing you!\n\n")
	b.WriteString("If you need to reschedule, please contact us at least 24 hours in advance.\n\n")
	b.WriteString("Best regards,\nYour Dealership Team\n")
	return b.String()
}
