package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// ReminderHandler handles reminder scheduling requests.
type ReminderHandler struct {
	reminderService services.ReminderServicer
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService services.ReminderServicer) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// CreateReminderRequest represents the request payload for creating a reminder.
type CreateReminderRequest struct {
	Title        string                   `json:"title" binding:"required,min=1,max=255"`
	Description  string                   `json:"description" binding:"max=1000"`
	ReminderType models.ReminderType      `json:"reminder_type" binding:"required,reminder_type"`
	Frequency    models.ReminderFrequency `json:"frequency" binding:"omitempty,reminder_frequency"`
	RemindAt     string                   `json:"remind_at" binding:"required" example:"2024-01-31T09:00:00Z"`
	Metadata     map[string]any           `json:"metadata"`
}

// UpdateReminderRequest represents a partial reminder update.
type UpdateReminderRequest struct {
	Title        *string                   `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string                   `json:"description" binding:"omitempty,max=1000"`
	ReminderType *models.ReminderType      `json:"reminder_type" binding:"omitempty,reminder_type"`
	Frequency    *models.ReminderFrequency `json:"frequency" binding:"omitempty,reminder_frequency"`
	RemindAt     *string                   `json:"remind_at"`
	IsActive     *bool                     `json:"is_active"`
}

// CreateReminder handles reminder creation.
// @Summary     Create a reminder
// @Description Schedule a one-off or recurring reminder
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReminderRequest true "Reminder details"
// @Success     201 {object} models.Reminder "Reminder created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	remindAt, err := parseFlexibleTime(req.RemindAt)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminderService.CreateReminder(userID, services.ReminderInput{
		Title:        req.Title,
		Description:  req.Description,
		ReminderType: req.ReminderType,
		Frequency:    req.Frequency,
		RemindAt:     remindAt,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reminder": reminder})
}

// GetReminders lists the user's reminders.
// @Summary     List reminders
// @Description List reminders ordered by next occurrence. Only active reminders are listed unless is_active is given.
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       is_active     query bool   false "Filter by active state"
// @Param       reminder_type query string false "Filter by reminder type"
// @Success     200 {array}  models.Reminder "Reminders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [get]
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.ReminderFilter
	if filter.IsActive, err = parseOptionalBool(c, "is_active"); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("reminder_type"); v != "" {
		t := models.ReminderType(v)
		filter.ReminderType = &t
	}

	reminders, err := h.reminderService.GetUserReminders(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// GetTemplates returns the reminder presets.
// @Summary     Reminder templates
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.ReminderTemplate "Templates"
// @Router      /reminders/templates [get]
func (h *ReminderHandler) GetTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.reminderService.Templates()})
}

// GetReminder returns one reminder.
// @Summary     Get reminder by ID
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} models.Reminder "Reminder"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [get]
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminder, err := h.reminderService.GetReminderByID(userID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// UpdateReminder applies a partial update.
// @Summary     Update reminder
// @Description Partially update a reminder. next_reminder is re-derived when frequency or remind_at change.
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Reminder ID"
// @Param       request body UpdateReminderRequest true "Fields to update"
// @Success     200 {object} models.Reminder "Updated reminder"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.UpdateReminderInput{
		Title:        req.Title,
		Description:  req.Description,
		ReminderType: req.ReminderType,
		Frequency:    req.Frequency,
		IsActive:     req.IsActive,
	}
	if req.RemindAt != nil {
		if in.RemindAt, err = parseOptionalTime(*req.RemindAt); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	reminder, err := h.reminderService.UpdateReminder(userID, reminderID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// ToggleReminder flips a reminder between active and inactive.
// @Summary     Toggle reminder
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} models.Reminder "Toggled reminder"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id}/toggle [patch]
func (h *ReminderHandler) ToggleReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminder, err := h.reminderService.ToggleReminder(userID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// DeleteReminder removes a reminder.
// @Summary     Delete reminder
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} MessageResponse "Reminder deleted"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reminderService.DeleteReminder(userID, reminderID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

// ProcessDueReminders runs the due-reminder sweep immediately.
// @Summary     Run reminder sweep
// @Description Fire every due reminder now. Guarded by the internal API key.
// @Tags        internal
// @Produce     json
// @Param       X-API-Key header string true "Internal API key"
// @Success     200 {object} services.SweepResult "Sweep outcome"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/reminders/process [post]
func (h *ReminderHandler) ProcessDueReminders(c *gin.Context) {
	result, err := h.reminderService.ProcessDueReminders(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
