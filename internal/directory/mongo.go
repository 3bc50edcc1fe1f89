package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/mediflow-portal/internal/models"
)

// userDocument is the shape of a credential in the users collection.
type userDocument struct {
	ID             string      `bson:"_id"`
	Name           string      `bson:"name"`
	Email          string      `bson:"email"`
	Password       string      `bson:"password"`
	Role           models.Role `bson:"role"`
	ProfilePicture string      `bson:"profilePicture,omitempty"`
	Specialization string      `bson:"specialization,omitempty"`
	HospitalName   string      `bson:"hospitalName,omitempty"`
	Location       string      `bson:"location,omitempty"`
	Experience     int         `bson:"experience,omitempty"`
}

func toDocument(c models.Credential) userDocument {
	doc := userDocument{
		ID:             c.Identity.ID,
		Name:           c.Identity.Name,
		Email:          c.Identity.Email,
		Password:       c.PasswordHash,
		Role:           c.Identity.Role,
		ProfilePicture: c.Identity.ProfilePicture,
	}
	switch p := c.Identity.Profile.(type) {
	case models.DoctorProfile:
		doc.Specialization = p.Specialization
		doc.HospitalName = p.HospitalName
		doc.Location = p.Location
		doc.Experience = p.Experience
	case models.HospitalProfile:
		doc.Location = p.Location
	}
	return doc
}

func (d userDocument) credential() (models.Credential, error) {
	var profile models.Profile
	switch d.Role {
	case models.RoleDoctor:
		profile = models.DoctorProfile{
			Specialization: d.Specialization,
			HospitalName:   d.HospitalName,
			Location:       d.Location,
			Experience:     d.Experience,
		}
	case models.RoleHospital:
		profile = models.HospitalProfile{Location: d.Location}
	default:
		profile = models.NewProfile(d.Role)
	}
	id := models.Identity{
		ID:             d.ID,
		Role:           d.Role,
		Name:           d.Name,
		Email:          d.Email,
		ProfilePicture: d.ProfilePicture,
		Profile:        profile,
	}
	if err := id.Validate(); err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Identity: id, PasswordHash: d.Password}, nil
}

// Mongo is a Directory backed by a MongoDB users collection.
type Mongo struct {
	users *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{users: db.Collection("users")}
}

// Init creates the unique email index and inserts the seeds into an empty
// collection.
func (m *Mongo) Init(ctx context.Context, seeds []Seed) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	n, err := m.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	creds, err := HashSeeds(seeds)
	if err != nil {
		return err
	}
	for _, c := range creds {
		if err := m.Add(ctx, c); err != nil && !errors.Is(err, ErrExists) {
			return err
		}
	}
	return nil
}

func (m *Mongo) Find(ctx context.Context, email string, role models.Role) (models.Credential, error) {
	var doc userDocument
	err := m.users.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Credential{}, ErrNotFound
	}
	if err != nil {
		return models.Credential{}, err
	}
	return doc.credential()
}

func (m *Mongo) Exists(ctx context.Context, email string) (bool, error) {
	n, err := m.users.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	return n > 0, err
}

func (m *Mongo) Add(ctx context.Context, cred models.Credential) error {
	_, err := m.users.InsertOne(ctx, toDocument(cred))
	if mongo.IsDuplicateKeyError(err) {
		return ErrExists
	}
	return err
}

func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.users.CountDocuments(ctx, bson.M{})
	return int(n), err
}
