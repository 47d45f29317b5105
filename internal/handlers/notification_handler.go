package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// NotificationHandler serves the user's notification inbox.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotificationsQuery holds the list query parameters.
type ListNotificationsQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// MarkReadRequest lists notifications to mark as read.
type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,min=1,dive,uuid"`
}

// GetNotifications lists unexpired notifications, newest first.
// @Summary     List notifications
// @Description List the user's unexpired notifications, newest first
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       is_read query bool   false "Filter by read state"
// @Param       type    query string false "Filter by notification type"
// @Param       limit   query int    false "Max items (default 20, max 100)"
// @Param       offset  query int    false "Items to skip"
// @Success     200 {object} services.NotificationList "Notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.NotificationFilter{Limit: q.Limit, Offset: q.Offset}
	if filter.IsRead, err = parseOptionalBool(c, "is_read"); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("type"); v != "" {
		t := models.NotificationType(v)
		filter.Type = &t
	}

	list, err := h.notificationService.GetUserNotifications(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetUnreadCount returns the number of unread, unexpired notifications.
// @Summary     Unread notification count
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.GetUnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead marks the given notifications as read.
// @Summary     Mark notifications read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MarkReadRequest true "Notification IDs"
// @Success     200 {object} map[string]int64 "Number of notifications updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/mark-read [patch]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	updated, err := h.notificationService.MarkAsRead(userID, req.NotificationIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// MarkAllAsRead marks every unread notification as read.
// @Summary     Mark all notifications read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications updated"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/mark-all-read [patch]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification removes one notification.
// @Summary     Delete notification
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} MessageResponse "Notification deleted"
// @Failure     400 {object} ErrorResponse "Invalid notification ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.DeleteNotification(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
