package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Role decides which screens and actions an identity can reach.
type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
)

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrFieldNotApplicable = errors.New("field does not apply to this role")
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleHospital}
}

// ParseRole maps a raw string onto the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleHospital:
		return true
	}
	return false
}

// Initial is the prefix used for minted identity IDs ("p", "d", "h").
func (r Role) Initial() string {
	if r == "" {
		return ""
	}
	return string(r[0])
}

// Profile holds the role-specific part of an Identity. Exactly one variant
// exists per role.
type Profile interface {
	ProfileRole() Role
}

type PatientProfile struct{}

type DoctorProfile struct {
	Specialization string
	HospitalName   string
	Location       string
	Experience     int // years
}

type HospitalProfile struct {
	Location string
}

func (PatientProfile) ProfileRole() Role  { return RolePatient }
func (DoctorProfile) ProfileRole() Role   { return RoleDoctor }
func (HospitalProfile) ProfileRole() Role { return RoleHospital }

// NewProfile returns the empty profile variant for a role.
func NewProfile(r Role) Profile {
	switch r {
	case RoleDoctor:
		return DoctorProfile{}
	case RoleHospital:
		return HospitalProfile{}
	case RolePatient:
		return PatientProfile{}
	}
	return nil
}

// Identity is the authenticated principal. It never carries a password.
type Identity struct {
	ID             string
	Role           Role
	Name           string
	Email          string
	ProfilePicture string
	Profile        Profile
}

func (id Identity) Validate() error {
	switch {
	case id.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidIdentity)
	case !id.Role.Valid():
		return fmt.Errorf("%w: %w %q", ErrInvalidIdentity, ErrInvalidRole, id.Role)
	case id.Email == "":
		return fmt.Errorf("%w: missing email", ErrInvalidIdentity)
	case id.Profile == nil:
		return fmt.Errorf("%w: missing profile", ErrInvalidIdentity)
	case id.Profile.ProfileRole() != id.Role:
		return fmt.Errorf("%w: %s profile on %s identity", ErrInvalidIdentity, id.Profile.ProfileRole(), id.Role)
	}
	if d, ok := id.Profile.(DoctorProfile); ok && d.Experience < 0 {
		return fmt.Errorf("%w: negative experience", ErrInvalidIdentity)
	}
	return nil
}

// identityJSON is the flat wire shape: role-specific fields sit beside the
// common ones and are only emitted for the matching role.
type identityJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	ProfilePicture string  `json:"profilePicture,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	HospitalName   *string `json:"hospitalName,omitempty"`
	Location       *string `json:"location,omitempty"`
	Experience     *int    `json:"experience,omitempty"`
}

func (id Identity) MarshalJSON() ([]byte, error) {
	out := identityJSON{
		ID:             id.ID,
		Name:           id.Name,
		Email:          id.Email,
		Role:           id.Role,
		ProfilePicture: id.ProfilePicture,
	}
	switch p := id.Profile.(type) {
	case DoctorProfile:
		out.Specialization = nonEmpty(p.Specialization)
		out.HospitalName = nonEmpty(p.HospitalName)
		out.Location = nonEmpty(p.Location)
		if p.Experience != 0 {
			out.Experience = &p.Experience
		}
	case HospitalProfile:
		out.Location = nonEmpty(p.Location)
	}
	return json.Marshal(out)
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in identityJSON
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	role, err := ParseRole(string(in.Role))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}

	var profile Profile
	switch role {
	case RoleDoctor:
		profile = DoctorProfile{
			Specialization: deref(in.Specialization),
			HospitalName:   deref(in.HospitalName),
			Location:       deref(in.Location),
			Experience:     derefInt(in.Experience),
		}
	case RoleHospital:
		if in.Specialization != nil || in.HospitalName != nil || in.Experience != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIdentity, ErrFieldNotApplicable)
		}
		profile = HospitalProfile{Location: deref(in.Location)}
	case RolePatient:
		if in.Specialization != nil || in.HospitalName != nil || in.Location != nil || in.Experience != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIdentity, ErrFieldNotApplicable)
		}
		profile = PatientProfile{}
	}

	*id = Identity{
		ID:             in.ID,
		Role:           role,
		Name:           in.Name,
		Email:          in.Email,
		ProfilePicture: in.ProfilePicture,
		Profile:        profile,
	}
	return nil
}

// ProfileUpdate is a partial set of fields to merge into an Identity.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	HospitalName   *string `json:"hospitalName,omitempty"`
	Location       *string `json:"location,omitempty"`
	Experience     *int    `json:"experience,omitempty"`
}

// Apply returns a copy of id with the update merged in. Role-specific fields
// sent for another role fail with ErrFieldNotApplicable.
func (id Identity) Apply(u ProfileUpdate) (Identity, error) {
	out := id
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	if u.ProfilePicture != nil {
		out.ProfilePicture = *u.ProfilePicture
	}

	switch p := id.Profile.(type) {
	case DoctorProfile:
		if u.Specialization != nil {
			p.Specialization = *u.Specialization
		}
		if u.HospitalName != nil {
			p.HospitalName = *u.HospitalName
		}
		if u.Location != nil {
			p.Location = *u.Location
		}
		if u.Experience != nil {
			p.Experience = *u.Experience
		}
		out.Profile = p
	case HospitalProfile:
		if u.Specialization != nil || u.HospitalName != nil || u.Experience != nil {
			return id, fmt.Errorf("%w: %s", ErrFieldNotApplicable, id.Role)
		}
		if u.Location != nil {
			p.Location = *u.Location
		}
		out.Profile = p
	default:
		if u.Specialization != nil || u.HospitalName != nil || u.Location != nil || u.Experience != nil {
			return id, fmt.Errorf("%w: %s", ErrFieldNotApplicable, id.Role)
		}
	}

	if err := out.Validate(); err != nil {
		return id, err
	}
	return out, nil
}

// Credential is a directory record: an identity plus its password hash.
type Credential struct {
	Identity     Identity
	PasswordHash string
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
