// Package reminders schedules and delivers pre-appointment reminders
// through an asynq queue backed by Redis.
package reminders

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadReminder = "leads.reminder"

type LeadReminderPayload struct {
	LeadID   string `json:"leadId"`
	Name     string `json:"name"`
	Model    string `json:"model"`
	Datetime string `json:"datetime"`
}

func NewLeadReminderTask(payload LeadReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadReminder, data), nil
}

func ParseLeadReminderPayload(task *asynq.Task) (LeadReminderPayload, error) {
	var payload LeadReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadReminderPayload{}, err
	}
	return payload, nil
}
