package mockdata

import (
	"time"

	"github.com/harentsoaR/mediflow-portal/internal/models"
)

func seedRecords() []models.HealthRecord {
	return []models.HealthRecord{
		{ID: "rec1", Type: "Lab Result", Title: "Complete Blood Count (CBC)", Date: "2023-05-15", Doctor: "Dr. Jane Smith", Department: "Hematology", Status: "normal", Summary: "All blood cell counts within normal range."},
		{ID: "rec2", Type: "Imaging", Title: "Chest X-Ray", Date: "2023-04-22", Doctor: "Dr. Robert Johnson", Department: "Radiology", Status: "abnormal", Summary: "Minor abnormality detected in lower right lung. Follow-up recommended."},
		{ID: "rec3", Type: "Prescription", Title: "Metformin Prescription", Date: "2023-05-10", Doctor: "Dr. Sarah Chen", Department: "Endocrinology", Status: "active", Summary: "500mg twice daily for diabetes management."},
		{ID: "rec4", Type: "Vaccination", Title: "Influenza Vaccine", Date: "2023-03-05", Doctor: "Dr. Michael Lee", Department: "Immunization Clinic", Status: "completed", Summary: "Annual flu vaccination administered."},
		{ID: "rec5", Type: "Consultation Note", Title: "Annual Physical Examination", Date: "2023-02-18", Doctor: "Dr. Lisa Wong", Department: "General Practice", Status: "normal", Summary: "Overall health is good. Recommended lifestyle adjustments for weight management."},
	}
}

func seedAllergies() []models.Allergy {
	return []models.Allergy{
		{ID: 1, Allergen: "Penicillin", Severity: "High", Symptoms: "Rash, Difficulty Breathing", Diagnosed: "2018-03-15"},
		{ID: 2, Allergen: "Peanuts", Severity: "Moderate", Symptoms: "Hives, Swelling", Diagnosed: "2015-07-22"},
	}
}

func seedImmunizations() []models.Immunization {
	return []models.Immunization{
		{ID: 1, Vaccine: "Influenza (Flu)", Date: "2023-03-05", Provider: "Dr. Michael Lee"},
		{ID: 2, Vaccine: "COVID-19", Date: "2022-08-15", Provider: "Community Vaccination Center"},
		{ID: 3, Vaccine: "Tetanus Booster", Date: "2021-04-12", Provider: "Dr. Sarah Chen"},
	}
}

func seedDoctors() []models.Doctor {
	return []models.Doctor{
		{ID: "d1", Name: "Dr. Jane Smith", Specialty: "Cardiologist", Hospital: "Medical Center", Image: "https://i.pravatar.cc/150?img=5", AvailableDates: []string{"2023-06-15", "2023-06-16", "2023-06-18", "2023-06-20"}},
		{ID: "d2", Name: "Dr. Michael Chen", Specialty: "General Practitioner", Hospital: "Community Clinic", Image: "https://i.pravatar.cc/150?img=11", AvailableDates: []string{"2023-06-16", "2023-06-17", "2023-06-19", "2023-06-20"}},
		{ID: "d3", Name: "Dr. Sarah Johnson", Specialty: "Neurologist", Hospital: "University Hospital", Image: "https://i.pravatar.cc/150?img=19", AvailableDates: []string{"2023-06-15", "2023-06-17", "2023-06-19", "2023-06-21"}},
	}
}

// TimeSlots are the bookable appointment times.
var TimeSlots = []string{"09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM"}

func seedAppointments() []models.Appointment {
	return []models.Appointment{
		{ID: "apt1", PatientID: "p1", PatientName: "John Doe", DoctorID: "d1", DoctorName: "Dr. Jane Smith", Specialty: "Cardiologist", Reason: "Annual checkup", Date: "2023-06-15", Time: "10:00 AM", Status: models.StatusUpcoming, Type: "in-person", Location: "Medical Center, Room 305"},
		{ID: "apt2", PatientID: "p1", PatientName: "John Doe", DoctorID: "d2", DoctorName: "Dr. Michael Chen", Specialty: "General Practitioner", Date: "2023-05-28", Time: "02:30 PM", Status: models.StatusCompleted, Type: "in-person", Location: "Community Clinic, Room 102"},
		{ID: "apt3", PatientID: "p1", PatientName: "John Doe", DoctorID: "d3", DoctorName: "Dr. Sarah Johnson", Specialty: "Neurologist", Date: "2023-06-20", Time: "11:00 AM", Status: models.StatusUpcoming, Type: "virtual", Location: "Video Consultation Link"},
		{ID: "apt4", PatientID: "pt-alice", PatientName: "Alice Smith", DoctorID: "d1", DoctorName: "Dr. Jane Smith", Specialty: "Cardiologist", Reason: "Blood pressure follow-up", Date: "2023-06-15", Time: "11:00 AM", Status: models.StatusUpcoming, Type: "in-person", Location: "Room 305"},
		{ID: "apt5", PatientID: "pt-robert", PatientName: "Robert Johnson", DoctorID: "d1", DoctorName: "Dr. Jane Smith", Specialty: "Cardiologist", Reason: "Chest pain evaluation", Date: "2023-06-15", Time: "02:00 PM", Status: models.StatusUpcoming, Type: "virtual", Location: "Video Consultation", Priority: "high"},
		{ID: "apt6", PatientID: "pt-mary", PatientName: "Mary Williams", DoctorID: "d1", DoctorName: "Dr. Jane Smith", Specialty: "Cardiologist", Reason: "Medication review", Date: "2023-05-28", Time: "02:30 PM", Status: models.StatusCompleted, Type: "in-person", Location: "Room 102"},
	}
}

func seedDocuments() []models.Document {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []models.Document{
		{ID: "doc1", Name: "Blood Test Results - June 2023.pdf", UploadedBy: "Dr. Jane Smith", UploadedByID: "d1", UploadDate: at("2023-06-15T10:30:00Z"), Type: "lab_result", SizeMB: 2.4, Shared: []string{"p1"}, ThumbnailURL: "https://i.pravatar.cc/150?img=10"},
		{ID: "doc2", Name: "Prescription - Antibiotics.pdf", UploadedBy: "Dr. Jane Smith", UploadedByID: "d1", UploadDate: at("2023-06-20T14:45:00Z"), Type: "prescription", SizeMB: 0.8, Shared: []string{"p1"}, ThumbnailURL: "https://i.pravatar.cc/150?img=11"},
		{ID: "doc3", Name: "MRI Scan Report.pdf", UploadedBy: "General Hospital", UploadedByID: "h1", UploadDate: at("2023-07-05T09:15:00Z"), Type: "imaging", SizeMB: 5.6, Shared: []string{"p1", "d1"}, ThumbnailURL: "https://i.pravatar.cc/150?img=12"},
		{ID: "doc4", Name: "Allergy Test Results.pdf", UploadedBy: "John Doe", UploadedByID: "p1", UploadDate: at("2023-07-10T16:20:00Z"), Type: "lab_result", SizeMB: 1.2, Shared: []string{"d1"}, ThumbnailURL: "https://i.pravatar.cc/150?img=13"},
	}
}

func seedPatients() []models.Patient {
	return []models.Patient{
		{ID: "p1", Name: "John Doe", Age: 45, BloodType: "O+", Conditions: []string{"Type 2 Diabetes"}, Allergies: []string{"Penicillin", "Peanuts"}, LastVisit: "2023-05-28"},
		{ID: "pt-alice", Name: "Alice Smith", Age: 62, BloodType: "A-", Conditions: []string{"Hypertension"}, Allergies: []string{}, LastVisit: "2023-05-02"},
		{ID: "pt-robert", Name: "Robert Johnson", Age: 58, BloodType: "B+", Conditions: []string{"Coronary Artery Disease"}, Allergies: []string{"Aspirin"}, LastVisit: "2023-04-22"},
		{ID: "pt-mary", Name: "Mary Williams", Age: 71, BloodType: "AB+", Conditions: []string{"Atrial Fibrillation"}, Allergies: []string{"Sulfa drugs"}, LastVisit: "2023-05-28"},
	}
}
