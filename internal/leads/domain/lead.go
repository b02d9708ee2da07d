// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Lead is an inbound lead exactly as received from the webhook, plus the
// capture timestamp.
type Lead struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	CarModel            string `json:"car_model"`
	AppointmentDatetime string `json:"appointment_datetime"`
	Timestamp           string `json:"timestamp"`
}

// NewLead constructs a Lead from validated webhook fields and stamps the
// capture time.
func NewLead(fields map[string]string) Lead {
	return Lead{
		Name:                fields["name"],
		Email:               fields["email"],
		Phone:               fields["phone"],
		CarModel:            fields["car_model"],
		AppointmentDatetime: fields["appointment_datetime"],
		Timestamp:           time.Now().Format(time.RFC3339),
	}
}

// ProcessedLead is the scorer's echo of the lead fields plus the intent
// score. The echoed values come from the model response, not the input.
type ProcessedLead struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Model       string  `json:"model"`
	Datetime    string  `json:"datetime"`
	IntentScore float64 `json:"intent_score"`
}

// FallbackScore is the intent score assigned when analysis fails. A lead
// carrying exactly this score is flagged for manual review.
const FallbackScore = 0.5

// FallbackProcessed returns the neutral ProcessedLead used when all
// analysis attempts fail.
func FallbackProcessed(lead Lead) ProcessedLead {
	return ProcessedLead{
		Name:        lead.Name,
		Phone:       lead.Phone,
		Model:       lead.CarModel,
		Datetime:    lead.AppointmentDatetime,
		IntentScore: FallbackScore,
	}
}

// DeriveLeadID returns the short stable identifier for a lead: the first
// 12 hex characters of the MD5 of the lowercased email+phone concatenation.
func DeriveLeadID(email, phone string) string {
	sum := md5.Sum([]byte(strings.ToLower(email + phone)))
	return hex.EncodeToString(sum[:])[:12]
}

// ID returns the lead's derived identifier.
func (l Lead) ID() string {
	return DeriveLeadID(l.Email, l.Phone)
}

// WorkflowResult is the outcome of one lead intake run. LeadID, MeetLink
// and IntentScore are nil until the corresponding step has produced them;
// Errors and Warnings always serialize as arrays.
type WorkflowResult struct {
	Success     bool     `json:"success"`
	LeadID      *string  `json:"lead_id"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	MeetLink    *string  `json:"meet_link"`
	IntentScore *float64 `json:"intent_score"`
}

// NewWorkflowResult returns an empty result with initialized lists.
func NewWorkflowResult() *WorkflowResult {
	return &WorkflowResult{
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError records an error entry. It does not touch the success flag:
// a storage failure is reported as an error while the run still succeeds.
func (r *WorkflowResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
}

// AddWarning records a non-blocking degradation.
func (r *WorkflowResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}
