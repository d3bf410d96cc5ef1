package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskScheduledNotifications = "reminders.scan"

const TaskNotificationRetention = "notifications.retention"

type ScheduledNotificationsPayload struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

type NotificationRetentionPayload struct {
	Cutoff time.Time `json:"cutoff"`
}

func NewScheduledNotificationsTask(payload ScheduledNotificationsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScheduledNotifications, data), nil
}

func ParseScheduledNotificationsPayload(task *asynq.Task) (ScheduledNotificationsPayload, error) {
	var payload ScheduledNotificationsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScheduledNotificationsPayload{}, err
	}
	return payload, nil
}

func NewNotificationRetentionTask(payload NotificationRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationRetention, data), nil
}

func ParseNotificationRetentionPayload(task *asynq.Task) (NotificationRetentionPayload, error) {
	var payload NotificationRetentionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationRetentionPayload{}, err
	}
	return payload, nil
}
