package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestCreateBudgetAlert(t *testing.T) {
	t.Run("exceeded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db, 7*24*time.Hour, "IDR")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID)

		n, err := svc.CreateBudgetAlert(user.ID, budget, cat, decimal.NewFromInt(1100000), AlertTypeExceeded)
		testutil.AssertNoError(t, err)

		if n.Type != models.NotificationTypeBudgetExceeded {
			t.Errorf("expected budget_exceeded, got %s", n.Type)
		}
		if n.Priority != models.NotificationPriorityUrgent {
			t.Errorf("expected urgent priority, got %s", n.Priority)
		}
		if n.ExpiresAt == nil || n.ExpiresAt.Before(time.Now().Add(6*24*time.Hour)) {
			t.Errorf("expected expiry about a week out, got %v", n.ExpiresAt)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(n.Metadata), &metadata); err != nil {
			t.Fatalf("metadata is not JSON: %v", err)
		}
		if metadata["budget_id"] != budget.ID || metadata["category_id"] != cat.ID {
			t.Errorf("unexpected metadata ids: %v", metadata)
		}
		if metadata["percentage"] != 110.0 {
			t.Errorf("expected percentage 110, got %v", metadata["percentage"])
		}
	})

	t.Run("warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db, 7*24*time.Hour, "IDR")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID)

		n, err := svc.CreateBudgetAlert(user.ID, budget, cat, decimal.NewFromInt(833333), AlertTypeWarning)
		testutil.AssertNoError(t, err)

		if n.Type != models.NotificationTypeBudgetAlert || n.Priority != models.NotificationPriorityHigh {
			t.Errorf("expected high budget_alert, got %s/%s", n.Priority, n.Type)
		}
		want := "You have spent 83.3% of your " + cat.Name + " budget (IDR 833333.00/IDR 1000000.00)"
		if n.Message != want {
			t.Errorf("expected message %q, got %q", want, n.Message)
		}
	})
}

func TestGetUserNotifications(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewNotificationService(db, time.Hour, "IDR")
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	first := testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)
	testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeReminder)
	last := testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeReminder)
	testutil.CreateTestNotification(t, db, other.ID, models.NotificationTypeReminder)

	expired := testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)
	db.Model(expired).Update("expires_at", time.Now().UTC().Add(-time.Minute))

	db.Model(first).Update("is_read", true)

	list, err := svc.GetUserNotifications(user.ID, NotificationFilter{})
	testutil.AssertNoError(t, err)
	if list.Total != 3 {
		t.Fatalf("expected 3 unexpired notifications, got %d", list.Total)
	}
	if list.Notifications[0].ID != last.ID {
		t.Errorf("expected newest first")
	}
	if list.HasMore {
		t.Error("expected has_more=false")
	}

	list, err = svc.GetUserNotifications(user.ID, NotificationFilter{Limit: 2})
	testutil.AssertNoError(t, err)
	if len(list.Notifications) != 2 || !list.HasMore {
		t.Errorf("expected a page of 2 with more, got %d/%v", len(list.Notifications), list.HasMore)
	}

	unread := false
	list, err = svc.GetUserNotifications(user.ID, NotificationFilter{IsRead: &unread})
	testutil.AssertNoError(t, err)
	if list.Total != 2 {
		t.Errorf("expected 2 unread, got %d", list.Total)
	}

	reminderType := models.NotificationTypeReminder
	list, err = svc.GetUserNotifications(user.ID, NotificationFilter{Type: &reminderType})
	testutil.AssertNoError(t, err)
	if list.Total != 2 {
		t.Errorf("expected 2 reminders, got %d", list.Total)
	}
}

func TestNotificationReadState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewNotificationService(db, time.Hour, "IDR")
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)
	testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)
	testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)
	foreign := testutil.CreateTestNotification(t, db, other.ID, models.NotificationTypeSystem)

	count, err := svc.GetUnreadCount(user.ID)
	testutil.AssertNoError(t, err)
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	updated, err := svc.MarkAsRead(user.ID, []string{a.ID, foreign.ID})
	testutil.AssertNoError(t, err)
	if updated != 1 {
		t.Errorf("expected only the user's notification to change, got %d", updated)
	}

	updated, err = svc.MarkAllAsRead(user.ID)
	testutil.AssertNoError(t, err)
	if updated != 2 {
		t.Errorf("expected 2 remaining to be marked, got %d", updated)
	}

	count, err = svc.GetUnreadCount(user.ID)
	testutil.AssertNoError(t, err)
	if count != 0 {
		t.Errorf("expected 0 unread, got %d", count)
	}

	count, err = svc.GetUnreadCount(other.ID)
	testutil.AssertNoError(t, err)
	if count != 1 {
		t.Errorf("expected other user's notification untouched, got %d unread", count)
	}
}

func TestDeleteNotification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewNotificationService(db, time.Hour, "IDR")
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	n := testutil.CreateTestNotification(t, db, user.ID, models.NotificationTypeSystem)

	err := svc.DeleteNotification(other.ID, n.ID)
	testutil.AssertAppError(t, err, "NOTIFICATION_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteNotification(user.ID, n.ID))

	err = svc.DeleteNotification(user.ID, n.ID)
	testutil.AssertAppError(t, err, "NOTIFICATION_NOT_FOUND")
}
