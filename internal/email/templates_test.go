package email

import (
	"strings"
	"testing"
)

func TestRenderConfirmation(t *testing.T) {
	html, err := renderConfirmation(confirmationData{
		Name:     "Jane Smith",
		Model:    "BMW X5",
		Datetime: "2030-06-01T14:30:00Z",
		Phone:    "+15551234567",
		LeadID:   "a1b2c3d4e5f6",
		MeetLink: "https://meet.google.com/new",
		HasQR:    true,
	})
	if err != nil {
		t.Fatalf("renderConfirmation: %v", err)
	}

	for _, want := range []string{
		"Dear Jane Smith,",
		"BMW X5",
		"2030-06-01T14:30:00Z",
		"a1b2c3d4e5f6",
		`href="https://meet.google.com/new"`,
		"Join Google Meet",
		`src="cid:meet-qr.png"`,
		"Test drive availability",
		"at least 24 hours in advance",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderConfirmationWithoutMeetLink(t *testing.T) {
	html, err := renderConfirmation(confirmationData{Name: "Bob", Model: "Civic", Datetime: "x", Phone: "y", LeadID: "z"})
	if err != nil {
		t.Fatalf("renderConfirmation: %v", err)
	}
	if strings.Contains(html, "Join Google Meet") {
		t.Error("button must be hidden without a meet link")
	}
	if strings.Contains(html, "cid:meet-qr.png") {
		t.Error("qr image must be hidden without a meet link")
	}
}

func TestRenderConfirmationEscapesInput(t *testing.T) {
	html, err := renderConfirmation(confirmationData{Name: `<script>alert("x")</script>`})
	if err != nil {
		t.Fatalf("renderConfirmation: %v", err)
	}
	if strings.Contains(html, "<script>alert") {
		t.Error("lead name must be escaped")
	}
}

func TestPlainConfirmation(t *testing.T) {
	text := plainConfirmation(confirmationData{
		Name:     "Jane Smith",
		Model:    "BMW X5",
		Datetime: "2030-06-01T14:30:00Z",
		Phone:    "+15551234567",
		LeadID:   "a1b2c3d4e5f6",
		MeetLink: "https://meet.google.com/new",
	})

	for _, want := range []string{
		"Dear Jane Smith,",
		"- Car Model: BMW X5",
		"- Reference ID: a1b2c3d4e5f6",
		"Join Meeting: https://meet.google.com/new",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}

	withoutLink := plainConfirmation(confirmationData{Name: "Bob"})
	if strings.Contains(withoutLink, "Join Meeting") {
		t.Error("meeting line must be omitted without a link")
	}
}
