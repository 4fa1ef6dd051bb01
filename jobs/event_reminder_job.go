package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/school_admin/metrics"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	reminderLead   = 60 * time.Minute
	reminderWindow = 5 * time.Minute
)

// Notifier drops a notification into many inboxes at once.
type Notifier interface {
	Broadcast(ctx context.Context, userIDs []uuid.UUID, typ models.NotificationType, title, message string, metadata map[string]any) (int, error)
}

// EventReminder notifies every user about events starting in about an hour.
type EventReminder struct {
	events   repositories.EventRepository
	users    repositories.UserRepository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewEventReminder(events repositories.EventRepository, users repositories.UserRepository, notifier Notifier, log zerolog.Logger) *EventReminder {
	return &EventReminder{
		events:   events,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (j *EventReminder) WithClock(now func() time.Time) *EventReminder {
	j.now = now
	return j
}

func (j *EventReminder) Name() string { return "event-reminder" }

// Run sends one reminder per event. The claim on reminder_sent_at keeps
// overlapping runs, here or on another instance, from sending it twice.
func (j *EventReminder) Run(ctx context.Context) error {
	now := j.now()
	lowerBound := now.Add(reminderLead)
	upperBound := lowerBound.Add(reminderWindow)

	due, err := j.events.DueForReminder(ctx, lowerBound, upperBound)
	if err != nil {
		return fmt.Errorf("find upcoming events: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	recipients, err := j.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, event := range due {
		claimed, err := j.events.ClaimReminder(ctx, event.ID, now)
		if err != nil {
			return fmt.Errorf("claim reminder for event %s: %w", event.ID, err)
		}
		if !claimed {
			continue
		}

		message := fmt.Sprintf("%s starts at %s UTC.", event.Title, event.StartDate.UTC().Format(time.Kitchen))
		if event.Location != nil && *event.Location != "" {
			message = fmt.Sprintf("%s starts at %s UTC in %s.", event.Title, event.StartDate.UTC().Format(time.Kitchen), *event.Location)
		}
		sent, err := j.notifier.Broadcast(ctx, recipients, models.NotificationInfo, "Reminder: "+event.Title+" starts in 1 hour", message, map[string]any{
			"eventId": event.ID.String(),
		})
		if err != nil {
			return fmt.Errorf("notify event %s: %w", event.ID, err)
		}
		metrics.RemindersSent.Inc()
		j.log.Info().Str("event_id", event.ID.String()).Int("recipients", sent).Msg("Sent event reminder")
	}
	return nil
}
