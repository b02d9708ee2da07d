package scoring

import (
	"fmt"

	"leadflow_backend/internal/leads/domain"
)

// systemPrompt pins the model into JSON-only qualification mode.
const systemPrompt = "You are a lead qualification assistant. Return only valid JSON."

const promptTemplate = `Analyze this car dealership lead and return a strict JSON object with intent scoring.

Lead Information:
- Name: %s
- Email: %s
- Phone: %s
- Car Model: %s
- Appointment: %s

Calculate an intent_score (0.0 to 1.0) based on:
- Email domain quality (corporate vs free email) - corporate emails get +0.2
- Car model (luxury vs economy) - luxury models get +0.3
- Appointment timing (urgency) - appointments within 3 days get +0.2
- Base score is 0.5

Return ONLY valid JSON in this exact format:
{
    "name": "%s",
    "phone": "%s",
    "model": "%s",
    "datetime": "%s",
    "intent_score": 0.75
}`

// buildPrompt renders the scoring prompt for one lead. The response format
// example echoes the lead fields so the model returns them verbatim.
func buildPrompt(lead domain.Lead) string {
	return fmt.Sprintf(promptTemplate,
		lead.Name, lead.Email, lead.Phone, lead.CarModel, lead.AppointmentDatetime,
		lead.Name, lead.Phone, lead.CarModel, lead.AppointmentDatetime,
	)
}
