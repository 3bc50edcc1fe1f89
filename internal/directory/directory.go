// Package directory holds the credential records the session store
// authenticates against.
package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/utils"
)

var (
	ErrNotFound = errors.New("account not found")
	ErrExists   = errors.New("account already exists")
)

// Directory looks up and stores credentials. Email matching is exact.
type Directory interface {
	Find(ctx context.Context, email string, role models.Role) (models.Credential, error)
	Exists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, cred models.Credential) error
	Count(ctx context.Context) (int, error)
}

// Seed is an account with a plain password, hashed when loaded.
type Seed struct {
	Identity models.Identity
	Password string
}

// MockAccounts are the demo accounts available on a fresh portal.
func MockAccounts() []Seed {
	return []Seed{
		{
			Password: "password",
			Identity: models.Identity{
				ID:             "p1",
				Role:           models.RolePatient,
				Name:           "John Doe",
				Email:          "patient@example.com",
				ProfilePicture: "https://i.pravatar.cc/150?img=1",
				Profile:        models.PatientProfile{},
			},
		},
		{
			Password: "password",
			Identity: models.Identity{
				ID:             "d1",
				Role:           models.RoleDoctor,
				Name:           "Dr. Jane Smith",
				Email:          "doctor@example.com",
				ProfilePicture: "https://i.pravatar.cc/150?img=2",
				Profile: models.DoctorProfile{
					Specialization: "Cardiology",
					HospitalName:   "General Hospital",
					Location:       "New York, NY",
					Experience:     12,
				},
			},
		},
		{
			Password: "password",
			Identity: models.Identity{
				ID:             "h1",
				Role:           models.RoleHospital,
				Name:           "General Hospital",
				Email:          "hospital@example.com",
				ProfilePicture: "https://i.pravatar.cc/150?img=3",
				Profile:        models.HospitalProfile{Location: "Boston, MA"},
			},
		},
	}
}

// HashSeeds converts seeds into credentials.
func HashSeeds(seeds []Seed) ([]models.Credential, error) {
	creds := make([]models.Credential, 0, len(seeds))
	for _, s := range seeds {
		hash, err := utils.HashPassword(s.Password)
		if err != nil {
			return nil, err
		}
		creds = append(creds, models.Credential{Identity: s.Identity, PasswordHash: hash})
	}
	return creds, nil
}

// Memory is an in-process Directory.
type Memory struct {
	mu    sync.RWMutex
	creds []models.Credential
}

func NewMemory(seeds []Seed) (*Memory, error) {
	creds, err := HashSeeds(seeds)
	if err != nil {
		return nil, err
	}
	return &Memory{creds: creds}, nil
}

func (m *Memory) Find(_ context.Context, email string, role models.Role) (models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.creds {
		if c.Identity.Email == email && c.Identity.Role == role {
			return c, nil
		}
	}
	return models.Credential{}, ErrNotFound
}

func (m *Memory) Exists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.creds {
		if c.Identity.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) Add(_ context.Context, cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creds {
		if c.Identity.Email == cred.Identity.Email || c.Identity.ID == cred.Identity.ID {
			return ErrExists
		}
	}
	m.creds = append(m.creds, cred)
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.creds), nil
}
