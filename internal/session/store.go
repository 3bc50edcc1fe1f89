// Package session owns the portal's single logged-in identity and its
// durable copy.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/mediflow-portal/internal/directory"
	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/metrics"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/storage"
	"github.com/harentsoaR/mediflow-portal/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateAccount   = errors.New("user with this email already exists")
	ErrMalformedSession   = errors.New("malformed persisted session")
)

// Persister stores the session blob under the store's single key.
// Load returns storage.ErrNotFound when nothing is stored.
type Persister interface {
	Load() ([]byte, error)
	Save(blob []byte) error
	Clear() error
}

// Notifier receives user-facing notices.
type Notifier interface {
	Publish(n models.Notice) models.Notice
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	Loading  bool
	identity *models.Identity
}

// NewSnapshot builds a snapshot; id is copied.
func NewSnapshot(id *models.Identity, loading bool) Snapshot {
	if id != nil {
		c := *id
		id = &c
	}
	return Snapshot{Loading: loading, identity: id}
}

// Identity returns a copy of the current identity, if any.
func (s Snapshot) Identity() (models.Identity, bool) {
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s Snapshot) Authenticated() bool { return s.identity != nil }

type state struct {
	snap    Snapshot
	changed chan struct{} // closed when this state is replaced
}

// Store is the single source of truth for who is logged in.
//
// Mutating operations are fully serialized: each holds writeMu from start to
// commit, so a later call observes the complete result of an earlier one and
// the last call to commit wins. Readers never block on writers.
type Store struct {
	dir     directory.Directory
	persist Persister
	notify  Notifier
	log     *logger.Logger

	codec   Codec
	latency time.Duration
	metrics *metrics.Metrics

	writeMu sync.Mutex
	cur     atomic.Pointer[state]
}

type Option func(*Store)

// WithLatency sets the simulated backend delay applied to login, register
// and profile updates.
func WithLatency(d time.Duration) Option { return func(s *Store) { s.latency = d } }

func WithCodec(c Codec) Option { return func(s *Store) { s.codec = c } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Store) { s.metrics = m } }

// NewStore returns an empty store in the loading state; call Restore next.
func NewStore(dir directory.Directory, persist Persister, notify Notifier, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		dir:     dir,
		persist: persist,
		notify:  notify,
		log:     log,
		codec:   JSONCodec{},
	}
	for _, o := range opts {
		o(s)
	}
	s.cur.Store(&state{snap: Snapshot{Loading: true}, changed: make(chan struct{})})
	return s
}

func (s *Store) Snapshot() Snapshot {
	return s.cur.Load().snap
}

// WaitIdle blocks until no restore or mutation is in flight.
func (s *Store) WaitIdle(ctx context.Context) (Snapshot, error) {
	for {
		st := s.cur.Load()
		if !st.snap.Loading {
			return st.snap, nil
		}
		select {
		case <-ctx.Done():
			return st.snap, ctx.Err()
		case <-st.changed:
		}
	}
}

// set publishes a new snapshot. Callers hold writeMu.
func (s *Store) set(id *models.Identity, loading bool) Snapshot {
	next := &state{snap: NewSnapshot(id, loading), changed: make(chan struct{})}
	prev := s.cur.Swap(next)
	close(prev.changed)
	return next.snap
}

func (s *Store) current() *models.Identity {
	return s.cur.Load().snap.identity
}

func (s *Store) component() *logrus.Entry {
	return s.log.WithComponent("session")
}

// Restore loads the persisted identity. Missing, unreadable or malformed data
// leaves the session empty; it never fails.
func (s *Store) Restore(ctx context.Context) Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.set(s.current(), true)

	if err := ctx.Err(); err != nil {
		s.component().WithError(err).Warn("Session restore abandoned")
		s.metrics.SessionOp("restore", "cancelled")
		return s.set(nil, false)
	}

	blob, err := s.persist.Load()
	if errors.Is(err, storage.ErrNotFound) {
		s.component().Debug("No persisted session")
		s.metrics.SessionOp("restore", "empty")
		return s.set(nil, false)
	}
	if err != nil {
		s.component().WithError(err).Warn("Could not read persisted session")
		s.metrics.SessionOp("restore", "error")
		return s.set(nil, false)
	}

	id, err := s.codec.Decode(blob)
	if err != nil {
		s.component().WithError(err).Warn("Discarding malformed persisted session")
		s.metrics.SessionOp("restore", "malformed")
		return s.set(nil, false)
	}

	s.component().WithField("user_id", id.ID).Info("Session restored")
	s.metrics.SessionOp("restore", "ok")
	return s.set(&id, false)
}

// Login authenticates against the directory by exact (email, password,
// role) match and makes the result the current session.
func (s *Store) Login(ctx context.Context, email, password string, role models.Role) (models.Identity, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	prev := s.current()
	s.set(prev, true)

	id, err := s.login(ctx, email, password, role)
	if err != nil {
		s.set(prev, false)
		s.metrics.SessionOp("login", result(err))
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Security("login_failed", "", map[string]interface{}{"email": email, "role": role})
			s.notify.Publish(models.Notice{
				Title:       "Login failed",
				Description: "Invalid email or password",
				Variant:     models.NoticeDestructive,
			})
		}
		return models.Identity{}, err
	}

	s.set(&id, false)
	s.metrics.SessionOp("login", "ok")
	s.component().WithField("user_id", id.ID).Info("Logged in")
	s.notify.Publish(models.Notice{
		Title:       "Logged in successfully",
		Description: fmt.Sprintf("Welcome back, %s!", id.Name),
	})
	return id, nil
}

func (s *Store) login(ctx context.Context, email, password string, role models.Role) (models.Identity, error) {
	if err := s.wait(ctx); err != nil {
		return models.Identity{}, err
	}

	cred, err := s.dir.Find(ctx, email, role)
	if errors.Is(err, directory.ErrNotFound) {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("find account: %w", err)
	}
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		return models.Identity{}, ErrInvalidCredentials
	}

	if err := s.save(cred.Identity); err != nil {
		return models.Identity{}, err
	}
	return cred.Identity, nil
}

// Logout clears the session in memory and in storage. It is a no-op when
// nobody is logged in, apart from clearing storage again.
func (s *Store) Logout() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	prev := s.current()
	s.set(nil, false)

	err := s.persist.Clear()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.component().WithError(err).Error("Could not clear persisted session")
		s.metrics.SessionOp("logout", "error")
		return fmt.Errorf("clear persisted session: %w", err)
	}

	s.metrics.SessionOp("logout", "ok")
	if prev != nil {
		s.component().WithField("user_id", prev.ID).Info("Logged out")
		s.notify.Publish(models.Notice{
			Title:       "Logged out",
			Description: "You have been logged out successfully",
		})
	}
	return nil
}

// Register creates an account and logs in as it. The new identity carries
// no role-specific attributes.
func (s *Store) Register(ctx context.Context, name, email, password string, role models.Role) (models.Identity, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	prev := s.current()
	s.set(prev, true)

	id, err := s.register(ctx, name, email, password, role)
	if err != nil {
		s.set(prev, false)
		s.metrics.SessionOp("register", result(err))
		if errors.Is(err, ErrDuplicateAccount) {
			s.notify.Publish(models.Notice{
				Title:       "Registration failed",
				Description: "User with this email already exists",
				Variant:     models.NoticeDestructive,
			})
		}
		return models.Identity{}, err
	}

	s.set(&id, false)
	s.metrics.SessionOp("register", "ok")
	s.component().WithField("user_id", id.ID).Info("Registered")
	s.notify.Publish(models.Notice{
		Title:       "Registration successful",
		Description: fmt.Sprintf("Welcome, %s!", id.Name),
	})
	return id, nil
}

func (s *Store) register(ctx context.Context, name, email, password string, role models.Role) (models.Identity, error) {
	if !role.Valid() {
		return models.Identity{}, fmt.Errorf("%w: %q", models.ErrInvalidRole, role)
	}
	if err := s.wait(ctx); err != nil {
		return models.Identity{}, err
	}

	exists, err := s.dir.Exists(ctx, email)
	if err != nil {
		return models.Identity{}, fmt.Errorf("check account: %w", err)
	}
	if exists {
		return models.Identity{}, ErrDuplicateAccount
	}
	n, err := s.dir.Count(ctx)
	if err != nil {
		return models.Identity{}, fmt.Errorf("count accounts: %w", err)
	}

	id := models.Identity{
		ID:             role.Initial() + strconv.Itoa(n+1),
		Role:           role,
		Name:           name,
		Email:          email,
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?img=%d", rand.Intn(70)),
		Profile:        models.NewProfile(role),
	}
	if err := id.Validate(); err != nil {
		return models.Identity{}, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.dir.Add(ctx, models.Credential{Identity: id, PasswordHash: hash})
	if errors.Is(err, directory.ErrExists) {
		return models.Identity{}, ErrDuplicateAccount
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("add account: %w", err)
	}

	if err := s.save(id); err != nil {
		return models.Identity{}, err
	}
	return id, nil
}

// UpdateProfile merges u into the current identity and persists it. Without
// a session it does nothing and returns nil.
func (s *Store) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.Identity, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	prev := s.current()
	if prev == nil {
		return nil, nil
	}
	s.set(prev, true)

	merged, err := s.update(ctx, *prev, u)
	if err != nil {
		s.set(prev, false)
		s.metrics.SessionOp("update_profile", result(err))
		return nil, err
	}

	s.set(&merged, false)
	s.metrics.SessionOp("update_profile", "ok")
	s.notify.Publish(models.Notice{
		Title:       "Profile updated",
		Description: "Your profile has been updated successfully",
	})
	return &merged, nil
}

func (s *Store) update(ctx context.Context, cur models.Identity, u models.ProfileUpdate) (models.Identity, error) {
	if err := s.wait(ctx); err != nil {
		return models.Identity{}, err
	}
	merged, err := cur.Apply(u)
	if err != nil {
		return models.Identity{}, err
	}
	if err := s.save(merged); err != nil {
		return models.Identity{}, err
	}
	return merged, nil
}

func (s *Store) save(id models.Identity) error {
	blob, err := s.codec.Encode(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.persist.Save(blob); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// wait simulates backend latency; it returns early if ctx ends.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func result(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrDuplicateAccount):
		return "duplicate_account"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, models.ErrFieldNotApplicable), errors.Is(err, models.ErrInvalidIdentity), errors.Is(err, models.ErrInvalidRole):
		return "invalid"
	}
	return "error"
}
