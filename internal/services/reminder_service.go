package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/period"
)

// reminderService manages user reminders and the due-reminder sweep.
type reminderService struct {
	db            *gorm.DB
	notifications NotificationServicer
	now           func() time.Time
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, notifications NotificationServicer) ReminderServicer {
	return &reminderService{
		db:            db,
		notifications: notifications,
		now:           time.Now,
	}
}

// nextReminder returns the occurrence after from, or nil for one-off reminders.
func nextReminder(from time.Time, frequency models.ReminderFrequency) *time.Time {
	var next time.Time
	switch frequency {
	case models.ReminderFrequencyDaily:
		next = from.AddDate(0, 0, 1)
	case models.ReminderFrequencyWeekly:
		next = from.AddDate(0, 0, 7)
	case models.ReminderFrequencyMonthly:
		next = from.AddDate(0, 1, 0)
	default:
		return nil
	}
	next = next.UTC()
	return &next
}

// CreateReminder creates a reminder. Repeating reminders get their first
// next_reminder one interval after remind_at.
func (s *reminderService) CreateReminder(userID string, in ReminderInput) (*models.Reminder, error) {
	if in.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder title is required")
	}
	if in.Frequency == "" {
		in.Frequency = models.ReminderFrequencyOnce
	}

	reminder := &models.Reminder{
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		ReminderType: in.ReminderType,
		Frequency:    in.Frequency,
		RemindAt:     in.RemindAt.UTC(),
		NextReminder: nextReminder(in.RemindAt, in.Frequency),
		IsActive:     true,
		Metadata:     marshalMetadata(in.Metadata, "reminder_type", in.ReminderType),
	}

	if err := s.db.Create(reminder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminder, nil
}

// GetUserReminders lists reminders in firing order. A nil IsActive lists
// active reminders only.
func (s *reminderService) GetUserReminders(userID string, filter ReminderFilter) ([]models.Reminder, error) {
	isActive := true
	if filter.IsActive != nil {
		isActive = *filter.IsActive
	}

	q := s.db.Where("user_id = ? AND is_active = ?", userID, isActive)
	if filter.ReminderType != nil {
		q = q.Where("reminder_type = ?", *filter.ReminderType)
	}

	reminders := []models.Reminder{}
	if err := q.Order("next_reminder ASC").Order("remind_at ASC").Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// GetReminderByID returns a reminder by ID if it belongs to the user.
func (s *reminderService) GetReminderByID(userID, reminderID string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.db.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReminderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &reminder, nil
}

// UpdateReminder applies a partial update and re-derives next_reminder when
// the schedule changes.
func (s *reminderService) UpdateReminder(userID, reminderID string, in UpdateReminderInput) (*models.Reminder, error) {
	reminder, err := s.GetReminderByID(userID, reminderID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ReminderType != nil {
		updates["reminder_type"] = *in.ReminderType
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Frequency != nil || in.RemindAt != nil {
		frequency := reminder.Frequency
		if in.Frequency != nil {
			frequency = *in.Frequency
			updates["frequency"] = frequency
		}
		remindAt := reminder.RemindAt
		if in.RemindAt != nil {
			remindAt = in.RemindAt.UTC()
			updates["remind_at"] = remindAt
		}
		updates["next_reminder"] = nextReminder(remindAt, frequency)
	}

	if len(updates) > 0 {
		if err := s.db.Model(reminder).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetReminderByID(userID, reminderID)
}

// DeleteReminder removes a reminder.
func (s *reminderService) DeleteReminder(userID, reminderID string) error {
	result := s.db.Where("id = ? AND user_id = ?", reminderID, userID).Delete(&models.Reminder{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReminderNotFound
	}
	return nil
}

// ToggleReminder flips a reminder between active and paused.
func (s *reminderService) ToggleReminder(userID, reminderID string) (*models.Reminder, error) {
	reminder, err := s.GetReminderByID(userID, reminderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(reminder).Update("is_active", !reminder.IsActive).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetReminderByID(userID, reminderID)
}

// Templates returns the quick reminder presets.
func (s *reminderService) Templates() []ReminderTemplate {
	return []ReminderTemplate{
		{
			Title:        "Monthly budget check",
			Description:  "Time to review this month's budget progress",
			ReminderType: models.ReminderTypeBudgetCheck,
			Frequency:    models.ReminderFrequencyMonthly,
		},
		{
			Title:        "Pay electricity bill",
			Description:  "Don't forget to pay the electricity bill",
			ReminderType: models.ReminderTypeBillPayment,
			Frequency:    models.ReminderFrequencyMonthly,
		},
		{
			Title:        "Savings transfer",
			Description:  "Transfer to your savings account",
			ReminderType: models.ReminderTypeRecurringTransaction,
			Frequency:    models.ReminderFrequencyMonthly,
		},
		{
			Title:        "Weekly spending review",
			Description:  "Review this week's expenses",
			ReminderType: models.ReminderTypeBudgetCheck,
			Frequency:    models.ReminderFrequencyWeekly,
		},
	}
}

// ProcessDueReminders turns every due reminder into a notification. One-off
// reminders are deactivated and repeating ones advance to their next
// occurrence. A failing reminder is counted and skipped.
func (s *reminderService) ProcessDueReminders(ctx context.Context) (*SweepResult, error) {
	now := s.now().UTC()
	log := logger.Named("reminders")

	var due []models.Reminder
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(s.db.Where("frequency = ? AND remind_at <= ?", models.ReminderFrequencyOnce, now).
			Or("frequency <> ? AND next_reminder <= ?", models.ReminderFrequencyOnce, now)).
		Find(&due).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &SweepResult{}
	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Total++
		if err := s.fire(ctx, &due[i]); err != nil {
			log.Errorw("failed to process reminder", "error", err, "reminder_id", due[i].ID)
			result.Failed++
			continue
		}
		result.Success++
	}

	return result, nil
}

func (s *reminderService) fire(ctx context.Context, reminder *models.Reminder) error {
	message := reminder.Description
	if message == "" {
		message = "Reminder: " + reminder.Title
	}

	metadata := map[string]any{}
	if reminder.Metadata != "" {
		if err := json.Unmarshal([]byte(reminder.Metadata), &metadata); err != nil {
			return fmt.Errorf("decode reminder metadata: %w", err)
		}
	}
	metadata["reminder_id"] = reminder.ID
	metadata["reminder_type"] = reminder.ReminderType

	if _, err := s.notifications.CreateNotification(reminder.UserID, SystemNotification{
		Title:    reminder.Title,
		Message:  message,
		Type:     models.NotificationTypeReminder,
		Priority: models.NotificationPriorityMedium,
		Metadata: metadata,
	}); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if reminder.Frequency == models.ReminderFrequencyOnce {
		updates["is_active"] = false
	} else {
		from := reminder.RemindAt
		if reminder.NextReminder != nil {
			from = *reminder.NextReminder
		}
		updates["next_reminder"] = nextReminder(from, reminder.Frequency)
	}

	if err := s.db.WithContext(ctx).Model(reminder).Updates(updates).Error; err != nil {
		return fmt.Errorf("advance reminder: %w", err)
	}
	return nil
}

// CreateBudgetCheckReminders notifies every user who has an active budget
// covering today and has not received a budget alert today. It returns the
// number of notifications written.
func (s *reminderService) CreateBudgetCheckReminders(ctx context.Context) (int, error) {
	today := period.DateOnly(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	log := logger.Named("reminders")

	alertedToday := s.db.Model(&models.Notification{}).
		Select("user_id").
		Where("type = ? AND created_at >= ? AND created_at < ?", models.NotificationTypeBudgetAlert, today, tomorrow)

	var userIDs []string
	err := s.db.WithContext(ctx).Model(&models.Budget{}).
		Distinct("user_id").
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, today, today).
		Where("user_id NOT IN (?)", alertedToday).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		_, err := s.notifications.CreateNotification(userID, SystemNotification{
			Title:    "Budget check reminder",
			Message:  "Don't forget to check your budget progress today!",
			Type:     models.NotificationTypeSystem,
			Priority: models.NotificationPriorityLow,
			Metadata: map[string]any{"reminder_type": models.ReminderTypeBudgetCheck},
		})
		if err != nil {
			log.Errorw("failed to create budget check reminder", "error", err, "user_id", userID)
			continue
		}
		created++
	}

	return created, nil
}
