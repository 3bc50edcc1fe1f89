package models

import "time"

type HealthRecord struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Doctor     string `json:"doctor"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Summary    string `json:"summary"`
}

type Allergy struct {
	ID        int    `json:"id"`
	Allergen  string `json:"allergen"`
	Severity  string `json:"severity"`
	Symptoms  string `json:"symptoms"`
	Diagnosed string `json:"diagnosed"`
}

type Immunization struct {
	ID       int    `json:"id"`
	Vaccine  string `json:"vaccine"`
	Date     string `json:"date"`
	Provider string `json:"provider"`
}

// Document is the metadata of a file in the document manager. File contents
// are not stored.
type Document struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadedByID string    `json:"uploadedById"`
	UploadDate   time.Time `json:"uploadDate"`
	Type         string    `json:"type"`
	SizeMB       float64   `json:"size"`
	Shared       []string  `json:"shared"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// SharedWith reports whether userID appears in the document's share list.
func (d Document) SharedWith(userID string) bool {
	for _, id := range d.Shared {
		if id == userID {
			return true
		}
	}
	return false
}

// Patient is a row on the doctor's patient list and the emergency lookup.
type Patient struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	BloodType  string   `json:"bloodType"`
	Conditions []string `json:"conditions"`
	Allergies  []string `json:"allergies"`
	LastVisit  string   `json:"lastVisit"`
}
