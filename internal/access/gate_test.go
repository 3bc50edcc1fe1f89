package access

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/session"
)

const overrideMessage = "Emergency access granted. This access is being logged for audit purposes."

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(n models.Notice) models.Notice {
	m.Called(n)
	n.ID = "notice-1"
	return n
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) RecordEmergencyAccess(ctx context.Context, who models.Identity, path, reason string) (models.AuditEntry, error) {
	args := m.Called(ctx, who, path, reason)
	return models.AuditEntry{ID: "audit-1"}, args.Error(0)
}

func setupGate(t *testing.T, emergencyRoles ...models.Role) (*Gate, *mockNotifier, *mockAuditor) {
	t.Helper()
	policy, err := NewPolicy(emergencyRoles, overrideMessage)
	require.NoError(t, err)
	null, _ := test.NewNullLogger()
	n, a := &mockNotifier{}, &mockAuditor{}
	return NewGate(policy, n, a, logger.Wrap(null), nil), n, a
}

func identity(role models.Role) *models.Identity {
	return &models.Identity{
		ID:      role.Initial() + "1",
		Role:    role,
		Name:    string(role),
		Email:   string(role) + "@example.com",
		Profile: models.NewProfile(role),
	}
}

func loggedIn(role models.Role) session.Snapshot {
	return session.NewSnapshot(identity(role), false)
}

// every subset of the role set, including the empty one
func roleSets() [][]models.Role {
	all := models.Roles()
	var sets [][]models.Role
	for mask := 0; mask < 1<<len(all); mask++ {
		var set []models.Role
		for i, r := range all {
			if mask&(1<<i) != 0 {
				set = append(set, r)
			}
		}
		sets = append(sets, set)
	}
	return sets
}

func TestAuthorizedIffRoleAllowed(t *testing.T) {
	policy, err := NewPolicy([]models.Role{models.RoleDoctor, models.RoleHospital}, overrideMessage)
	require.NoError(t, err)

	for _, role := range models.Roles() {
		for _, set := range roleSets() {
			for _, emergency := range []bool{false, true} {
				rule := Rule{Path: "/x", RequiredRoles: set, AllowEmergency: emergency}
				d := policy.Evaluate(loggedIn(role), rule, "/x")
				want := len(set) == 0 || containsRole(set, role)
				assert.Equal(t, want, d.Outcome == Authorized, "role=%s set=%v emergency=%v", role, set, emergency)
			}
		}
	}
}

func TestEmergencyOverrideEmitsOneNotice(t *testing.T) {
	eligible := []models.Role{models.RoleDoctor, models.RoleHospital}
	for _, role := range eligible {
		for _, set := range roleSets() {
			if len(set) == 0 || containsRole(set, role) {
				continue
			}
			gate, notifier, auditor := setupGate(t, eligible...)
			notifier.On("Publish", mock.Anything).Return()
			auditor.On("RecordEmergencyAccess", mock.Anything, *identity(role), "/x", overrideMessage).Return(nil)

			d := gate.Check(context.Background(), loggedIn(role), Rule{Path: "/x", RequiredRoles: set, AllowEmergency: true}, "/x")

			assert.Equal(t, EmergencyAuthorized, d.Outcome, "role=%s set=%v", role, set)
			assert.True(t, d.Outcome.Granted())
			notifier.AssertNumberOfCalls(t, "Publish", 1)
			auditor.AssertNumberOfCalls(t, "RecordEmergencyAccess", 1)
		}
	}
}

func TestDoctorEmergencyIntoHospitalScreen(t *testing.T) {
	gate, notifier, auditor := setupGate(t, models.RoleDoctor, models.RoleHospital)
	notifier.On("Publish", mock.MatchedBy(func(n models.Notice) bool {
		return n.Variant == models.NoticeWarning && n.Description == overrideMessage
	})).Return().Once()
	auditor.On("RecordEmergencyAccess", mock.Anything, *identity(models.RoleDoctor), "/emergency-access", overrideMessage).Return(nil).Once()

	rule := Rule{Path: "/emergency-access", RequiredRoles: []models.Role{models.RoleHospital}, AllowEmergency: true}
	d := gate.Check(context.Background(), loggedIn(models.RoleDoctor), rule, "/emergency-access")

	assert.Equal(t, EmergencyAuthorized, d.Outcome)
	require.NotNil(t, d.Notice)
	assert.Equal(t, overrideMessage, d.Notice.Description)
	assert.Equal(t, "notice-1", d.Notice.ID)
	assert.Empty(t, d.Redirect)
	notifier.AssertExpectations(t)
	auditor.AssertExpectations(t)
}

func TestPatientDeniedWithoutOverride(t *testing.T) {
	gate, notifier, auditor := setupGate(t, models.RoleDoctor, models.RoleHospital)

	rule := Rule{Path: "/my-patients", RequiredRoles: []models.Role{models.RoleDoctor}}
	d := gate.Check(context.Background(), loggedIn(models.RolePatient), rule, "/my-patients")

	assert.Equal(t, Denied, d.Outcome)
	assert.Equal(t, "/unauthorized", d.Redirect)
	assert.Nil(t, d.Notice)
	notifier.AssertNotCalled(t, "Publish", mock.Anything)
	auditor.AssertNotCalled(t, "RecordEmergencyAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPatientNeverUsesOverride(t *testing.T) {
	gate, notifier, _ := setupGate(t, models.RoleDoctor, models.RoleHospital)

	rule := Rule{Path: "/emergency-access", RequiredRoles: []models.Role{models.RoleHospital}, AllowEmergency: true}
	d := gate.Check(context.Background(), loggedIn(models.RolePatient), rule, "/emergency-access")

	assert.Equal(t, Denied, d.Outcome)
	notifier.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAnonymousRedirectsToLoginWithReturnPath(t *testing.T) {
	gate, notifier, _ := setupGate(t, models.RoleDoctor)

	d := gate.Check(context.Background(), session.NewSnapshot(nil, false), Rule{Path: "/records"}, "/records")

	assert.Equal(t, Anonymous, d.Outcome)
	assert.Equal(t, "/login?next=%2Frecords", d.Redirect)
	assert.Equal(t, "/records", d.ReturnTo)
	notifier.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestLoadingTakesPrecedence(t *testing.T) {
	gate, notifier, _ := setupGate(t, models.RoleDoctor, models.RoleHospital)

	for _, snap := range []session.Snapshot{
		session.NewSnapshot(nil, true),
		session.NewSnapshot(identity(models.RoleDoctor), true),
	} {
		rule := Rule{Path: "/emergency-access", RequiredRoles: []models.Role{models.RoleHospital}, AllowEmergency: true}
		d := gate.Check(context.Background(), snap, rule, "/emergency-access")
		assert.Equal(t, AwaitingSession, d.Outcome)
		assert.False(t, d.Outcome.Granted())
		assert.Empty(t, d.Redirect)
	}
	notifier.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAuditFailureStillGrants(t *testing.T) {
	gate, notifier, auditor := setupGate(t, models.RoleDoctor)
	notifier.On("Publish", mock.Anything).Return()
	auditor.On("RecordEmergencyAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	rule := Rule{Path: "/emergency-access", RequiredRoles: []models.Role{models.RoleHospital}, AllowEmergency: true}
	d := gate.Check(context.Background(), loggedIn(models.RoleDoctor), rule, "/emergency-access")
	assert.Equal(t, EmergencyAuthorized, d.Outcome)
}

func TestNewPolicyRejectsPatientOverride(t *testing.T) {
	_, err := NewPolicy([]models.Role{models.RoleDoctor, models.RolePatient}, "x")
	assert.ErrorIs(t, err, ErrPublicEmergencyRole)

	_, err = NewPolicy([]models.Role{"janitor"}, "x")
	assert.ErrorIs(t, err, models.ErrInvalidRole)
}

func TestSafeReturnPath(t *testing.T) {
	cases := map[string]string{
		"/records":                  "/records",
		"/appointments?tab=history": "/appointments?tab=history",
		"":                          "/dashboard",
		"records":                   "/dashboard",
		"//evil.example/x":          "/dashboard",
		"https://evil.example":      "/dashboard",
		`/\evil.example`:            "/dashboard",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeReturnPath(in), in)
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	r, ok := RuleFor(rules, "/emergency-access")
	require.True(t, ok)
	assert.True(t, r.AllowEmergency)
	assert.Equal(t, []models.Role{models.RoleHospital}, r.RequiredRoles)

	r, ok = RuleFor(rules, "/my-patients")
	require.True(t, ok)
	assert.False(t, r.AllowEmergency)

	_, ok = RuleFor(rules, "/login")
	assert.False(t, ok)
}
