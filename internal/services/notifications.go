package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/models"
)

// NotificationService is the portal's toast bus. It keeps the most recent
// notices for the client to poll.
type NotificationService struct {
	log  *logger.Logger
	size int

	mu      sync.Mutex
	notices []models.Notice // oldest first
}

func NewNotificationService(log *logger.Logger, size int) *NotificationService {
	if size <= 0 {
		size = 1
	}
	return &NotificationService{log: log, size: size}
}

// Publish stamps and stores a notice, dropping the oldest once full.
func (s *NotificationService) Publish(n models.Notice) models.Notice {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if n.Variant == "" {
		n.Variant = models.NoticeDefault
	}

	s.mu.Lock()
	s.notices = append(s.notices, n)
	if over := len(s.notices) - s.size; over > 0 {
		s.notices = append([]models.Notice(nil), s.notices[over:]...)
	}
	s.mu.Unlock()

	entry := s.log.WithComponent("notices").WithFields(logrus.Fields{
		"notice_id": n.ID,
		"variant":   n.Variant,
		"title":     n.Title,
	})
	if n.Variant == models.NoticeDefault {
		entry.Info(n.Description)
	} else {
		entry.Warn(n.Description)
	}
	return n
}

// Recent returns up to limit notices, newest first. limit <= 0 means all.
func (s *NotificationService) Recent(limit int) []models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notice, 0, len(s.notices))
	for i := len(s.notices) - 1; i >= 0; i-- {
		out = append(out, s.notices[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// AppointmentBooked announces a new booking.
func (s *NotificationService) AppointmentBooked(apt *models.Appointment) models.Notice {
	return s.Publish(models.Notice{
		Title: "Appointment booked",
		Description: fmt.Sprintf("%s with %s on %s at %s.",
			apt.Type, apt.DoctorName, apt.Date, apt.Time),
	})
}

// AppointmentCancelled announces a cancellation.
func (s *NotificationService) AppointmentCancelled(apt *models.Appointment) models.Notice {
	return s.Publish(models.Notice{
		Title:       "Appointment cancelled",
		Description: fmt.Sprintf("The appointment with %s on %s at %s was cancelled.", apt.PatientName, apt.Date, apt.Time),
	})
}
