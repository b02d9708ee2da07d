package domain

import (
	"regexp"
	"time"
)

// requiredFields is the fixed validation order for missing-field errors.
var requiredFields = []string{"name", "email", "phone", "car_model", "appointment_datetime"}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	phoneNoise   = regexp.MustCompile(`[\s\-()]`)
)

// pastGrace is how far in the past an appointment may be before it gets
// flagged. Past-dated appointments are accepted either way.
const pastGrace = 5 * time.Minute

// ValidateLead checks webhook fields and returns validation messages in a
// fixed order. When any required field is missing, format checks are
// skipped entirely. pastDated reports an appointment more than five
// minutes in the past; it is informational, never an error.
func ValidateLead(fields map[string]string) (errs []string, pastDated bool) {
	for _, field := range requiredFields {
		if fields[field] == "" {
			errs = append(errs, "Missing required field: "+field)
		}
	}
	if len(errs) > 0 {
		return errs, false
	}

	if !emailPattern.MatchString(fields["email"]) {
		errs = append(errs, "Invalid email format")
	}

	cleaned := phoneNoise.ReplaceAllString(fields["phone"], "")
	if !phonePattern.MatchString(cleaned) {
		errs = append(errs, "Invalid phone format")
	}

	appointment, _, err := ParseAppointment(fields["appointment_datetime"])
	if err != nil {
		errs = append(errs, "Invalid datetime format (use ISO 8601)")
	} else if appointment.Before(time.Now().Add(-pastGrace)) {
		pastDated = true
	}

	return errs, pastDated
}

// offsetLayouts cover inputs carrying an explicit UTC offset or Z.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// naiveLayouts cover inputs without zone information.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseAppointment parses an ISO-8601 appointment time, interpreting
// zone-less values in server local time. hasOffset reports whether the
// input carried explicit zone information.
func ParseAppointment(value string) (t time.Time, hasOffset bool, err error) {
	return ParseAppointmentIn(value, time.Local)
}

// ParseAppointmentIn is ParseAppointment with a caller-chosen location for
// zone-less values.
func ParseAppointmentIn(value string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}

	var firstErr error
	for _, layout := range offsetLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, true, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, firstErr
}
