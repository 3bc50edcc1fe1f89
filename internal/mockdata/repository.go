// Package mockdata is the in-memory dataset behind the portal screens.
package mockdata

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/harentsoaR/mediflow-portal/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not permitted")
	ErrSlotUnavailable = errors.New("time slot is not available")
	ErrNotCancellable  = errors.New("appointment cannot be cancelled")
	ErrInvalid         = errors.New("invalid request")
)

type Repository struct {
	mu            sync.RWMutex
	records       []models.HealthRecord
	allergies     []models.Allergy
	immunizations []models.Immunization
	doctors       []models.Doctor
	appointments  []models.Appointment
	documents     []models.Document // newest first
	patients      []models.Patient
	nextAppt      int
	nextDoc       int
}

func NewRepository() *Repository {
	r := &Repository{
		records:       seedRecords(),
		allergies:     seedAllergies(),
		immunizations: seedImmunizations(),
		doctors:       seedDoctors(),
		appointments:  seedAppointments(),
		documents:     seedDocuments(),
		patients:      seedPatients(),
	}
	r.nextAppt = len(r.appointments)
	r.nextDoc = len(r.documents)
	return r
}

// RecordFilter narrows the health record list. Empty fields match all.
type RecordFilter struct {
	Type  string
	Query string
}

func (r *Repository) Records(f RecordFilter) []models.HealthRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.HealthRecord, 0, len(r.records))
	for _, rec := range r.records {
		if f.Type != "" && f.Type != "all" && !strings.EqualFold(rec.Type, f.Type) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.Title+" "+rec.Summary+" "+rec.Doctor), q) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (r *Repository) Allergies() []models.Allergy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.allergies)
}

func (r *Repository) Immunizations() []models.Immunization {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.immunizations)
}

func (r *Repository) Doctors() []models.Doctor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.doctors)
}

// Appointments returns what the identity may see: patients their own,
// doctors their schedule, hospitals everything.
func (r *Repository) Appointments(id models.Identity) []models.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Appointment, 0)
	for _, a := range r.appointments {
		switch id.Role {
		case models.RolePatient:
			if a.PatientID != id.ID {
				continue
			}
		case models.RoleDoctor:
			if a.DoctorID != id.ID {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Booking is a patient's appointment request.
type Booking struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
}

func (r *Repository) Book(patient models.Identity, b Booking) (models.Appointment, error) {
	if b.Type == "" {
		b.Type = "in-person"
	}
	if b.Type != "in-person" && b.Type != "virtual" {
		return models.Appointment{}, fmt.Errorf("%w: appointment type %q", ErrInvalid, b.Type)
	}
	if !slices.Contains(TimeSlots, b.Time) {
		return models.Appointment{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, b.Time)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.doctors, func(d models.Doctor) bool { return d.ID == b.DoctorID })
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("doctor %s: %w", b.DoctorID, ErrNotFound)
	}
	doc := r.doctors[i]
	if !slices.Contains(doc.AvailableDates, b.Date) {
		return models.Appointment{}, fmt.Errorf("%w: %s is not available on %s", ErrSlotUnavailable, doc.Name, b.Date)
	}
	for _, a := range r.appointments {
		if a.DoctorID == doc.ID && a.Date == b.Date && a.Time == b.Time && a.Status != models.StatusCancelled {
			return models.Appointment{}, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, b.Date, b.Time)
		}
	}

	location := doc.Hospital
	if b.Type == "virtual" {
		location = "Video Consultation Link"
	}
	r.nextAppt++
	apt := models.Appointment{
		ID:          fmt.Sprintf("apt%d", r.nextAppt),
		PatientID:   patient.ID,
		PatientName: patient.Name,
		DoctorID:    doc.ID,
		DoctorName:  doc.Name,
		Specialty:   doc.Specialty,
		Reason:      b.Reason,
		Date:        b.Date,
		Time:        b.Time,
		Status:      models.StatusUpcoming,
		Type:        b.Type,
		Location:    location,
	}
	r.appointments = append(r.appointments, apt)
	return apt, nil
}

// Cancel marks an upcoming appointment cancelled. Doctors may only cancel
// their own appointments.
func (r *Repository) Cancel(by models.Identity, appointmentID string) (models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.appointments, func(a models.Appointment) bool { return a.ID == appointmentID })
	if i < 0 {
		return models.Appointment{}, ErrNotFound
	}
	apt := &r.appointments[i]
	switch by.Role {
	case models.RoleHospital:
	case models.RoleDoctor:
		if apt.DoctorID != by.ID {
			return models.Appointment{}, ErrForbidden
		}
	default:
		return models.Appointment{}, ErrForbidden
	}
	if apt.Status != models.StatusUpcoming {
		return models.Appointment{}, fmt.Errorf("%w: status is %s", ErrNotCancellable, apt.Status)
	}
	apt.Status = models.StatusCancelled
	return *apt, nil
}

// Documents lists the "my" or "shared" tab for a user.
func (r *Repository) Documents(user models.Identity, tab string) []models.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Document, 0)
	for _, d := range r.documents {
		var keep bool
		if tab == "shared" {
			keep = d.SharedWith(user.ID) && d.UploadedByID != user.ID
		} else if user.Role == models.RolePatient {
			keep = d.UploadedByID == user.ID || d.SharedWith(user.ID)
		} else {
			keep = d.UploadedByID == user.ID
		}
		if keep {
			out = append(out, d)
		}
	}
	return out
}

// Upload is the metadata of a file added to the document manager.
type Upload struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (r *Repository) AddDocument(user models.Identity, u Upload) (models.Document, error) {
	if strings.TrimSpace(u.Name) == "" || u.SizeBytes < 0 {
		return models.Document{}, fmt.Errorf("%w: document", ErrInvalid)
	}
	docType := "other"
	switch {
	case strings.Contains(u.ContentType, "pdf"):
		docType = "document"
	case strings.Contains(u.ContentType, "image"):
		docType = "imaging"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextDoc++
	doc := models.Document{
		ID:           fmt.Sprintf("doc%d", r.nextDoc),
		Name:         u.Name,
		UploadedBy:   user.Name,
		UploadedByID: user.ID,
		UploadDate:   time.Now().UTC(),
		Type:         docType,
		SizeMB:       float64(u.SizeBytes) / (1024 * 1024),
		Shared:       []string{},
		ThumbnailURL: user.ProfilePicture,
	}
	r.documents = append([]models.Document{doc}, r.documents...)
	return doc, nil
}

func (r *Repository) DeleteDocument(user models.Identity, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.documents, func(d models.Document) bool { return d.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	if r.documents[i].UploadedByID != user.ID {
		return ErrForbidden
	}
	r.documents = slices.Delete(r.documents, i, i+1)
	return nil
}

// Patients lists patients whose name contains query (case-insensitive).
func (r *Repository) Patients(query string) []models.Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// Summary is the dashboard's headline numbers.
type Summary struct {
	Role                 models.Role `json:"role"`
	UpcomingAppointments int         `json:"upcomingAppointments"`
	CompletedVisits      int         `json:"completedVisits"`
	Records              int         `json:"records,omitempty"`
	Documents            int         `json:"documents"`
	Patients             int         `json:"patients,omitempty"`
	Doctors              int         `json:"doctors,omitempty"`
	HighPriority         int         `json:"highPriority,omitempty"`
}

func (r *Repository) Dashboard(id models.Identity) Summary {
	s := Summary{Role: id.Role}
	for _, a := range r.Appointments(id) {
		switch a.Status {
		case models.StatusUpcoming:
			s.UpcomingAppointments++
			if a.Priority == "high" {
				s.HighPriority++
			}
		case models.StatusCompleted:
			s.CompletedVisits++
		}
	}
	s.Documents = len(r.Documents(id, "my"))

	r.mu.RLock()
	defer r.mu.RUnlock()
	switch id.Role {
	case models.RolePatient:
		s.Records = len(r.records)
	case models.RoleDoctor:
		seen := map[string]bool{}
		for _, a := range r.appointments {
			if a.DoctorID == id.ID {
				seen[a.PatientID] = true
			}
		}
		s.Patients = len(seen)
	case models.RoleHospital:
		s.Patients = len(r.patients)
		s.Doctors = len(r.doctors)
	}
	return s
}
