package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mediflow-portal/internal/middleware"
	"github.com/harentsoaR/mediflow-portal/internal/mockdata"
	"github.com/harentsoaR/mediflow-portal/internal/models"
)

func currentIdentity(c *gin.Context) (models.Identity, bool) {
	return middleware.CurrentIdentity(c)
}

// GetAppointments lists the caller's appointments. Patients also get the
// bookable doctors and time slots.
func (h *Handler) GetAppointments(c *gin.Context) {
	id, _ := currentIdentity(c)

	appointments := h.Data.Appointments(id)
	if status := c.Query("status"); status != "" {
		filtered := make([]models.Appointment, 0, len(appointments))
		for _, a := range appointments {
			if a.Status == status {
				filtered = append(filtered, a)
			}
		}
		appointments = filtered
	}

	body := gin.H{"appointments": appointments}
	if id.Role == models.RolePatient {
		body["doctors"] = h.Data.Doctors()
		body["timeSlots"] = mockdata.TimeSlots
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	id, _ := currentIdentity(c)
	if id.Role != models.RolePatient {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only patients can book appointments."})
		return
	}

	var req mockdata.Booking
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	apt, err := h.Data.Book(id, req)
	if err != nil {
		dataError(c, err)
		return
	}

	h.NotificationSvc.AppointmentBooked(&apt)
	c.JSON(http.StatusCreated, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, _ := currentIdentity(c)
	if id.Role == models.RolePatient {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	apt, err := h.Data.Cancel(id, c.Param("id"))
	if err != nil {
		dataError(c, err)
		return
	}

	h.NotificationSvc.AppointmentCancelled(&apt)
	c.JSON(http.StatusOK, apt)
}

func dataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mockdata.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, mockdata.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
	case errors.Is(err, mockdata.ErrSlotUnavailable), errors.Is(err, mockdata.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
