package models

// Appointment statuses.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId,omitempty"`
	PatientName string `json:"patient,omitempty"`
	DoctorID    string `json:"doctorId,omitempty"`
	DoctorName  string `json:"doctor,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"`
	Status      string `json:"status"`
	Type        string `json:"type"` // in-person or virtual
	Location    string `json:"location"`
	Priority    string `json:"priority,omitempty"`
}

// Doctor is a bookable practitioner shown on the appointments screen.
type Doctor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Hospital       string   `json:"hospital"`
	Image          string   `json:"image"`
	AvailableDates []string `json:"availableDates"`
}
