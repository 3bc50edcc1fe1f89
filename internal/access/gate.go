// Package access decides, per protected navigation, whether to render the
// target, redirect, or grant an audited emergency pass.
package access

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/metrics"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/session"
)

type Outcome int

const (
	AwaitingSession Outcome = iota
	Anonymous
	Authorized
	EmergencyAuthorized
	Denied
)

func (o Outcome) String() string {
	switch o {
	case AwaitingSession:
		return "awaiting_session"
	case Anonymous:
		return "anonymous"
	case Authorized:
		return "authorized"
	case EmergencyAuthorized:
		return "emergency_authorized"
	case Denied:
		return "denied"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Granted reports whether the target may be rendered.
func (o Outcome) Granted() bool {
	return o == Authorized || o == EmergencyAuthorized
}

// Rule describes who may open a path. No RequiredRoles means any
// authenticated identity.
type Rule struct {
	Path           string
	RequiredRoles  []models.Role
	AllowEmergency bool
}

func (r Rule) allows(role models.Role) bool {
	if len(r.RequiredRoles) == 0 {
		return true
	}
	return containsRole(r.RequiredRoles, role)
}

var ErrPublicEmergencyRole = errors.New("patients cannot hold emergency override")

// Policy is the fixed configuration of the gate.
type Policy struct {
	EmergencyRoles   []models.Role
	OverrideMessage  string
	LoginPath        string
	UnauthorizedPath string
}

// NewPolicy validates the emergency role set. Only elevated roles may
// override; the patient role is rejected.
func NewPolicy(emergencyRoles []models.Role, overrideMessage string) (Policy, error) {
	for _, r := range emergencyRoles {
		if !r.Valid() {
			return Policy{}, fmt.Errorf("emergency role: %w: %q", models.ErrInvalidRole, r)
		}
		if r == models.RolePatient {
			return Policy{}, ErrPublicEmergencyRole
		}
	}
	return Policy{
		EmergencyRoles:   append([]models.Role(nil), emergencyRoles...),
		OverrideMessage:  overrideMessage,
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
	}, nil
}

// Decision is the result of evaluating one navigation.
type Decision struct {
	Outcome  Outcome
	Redirect string // set for Anonymous and Denied
	ReturnTo string // originally requested path, for post-login redirect
	Notice   *models.Notice
}

// Evaluate applies the gate's precedence order to a snapshot. It has no side
// effects; the notice for an emergency pass is returned, not published.
func (p Policy) Evaluate(snap session.Snapshot, rule Rule, requestedPath string) Decision {
	if snap.Loading {
		return Decision{Outcome: AwaitingSession}
	}

	id, ok := snap.Identity()
	if !ok {
		returnTo := SafeReturnPath(requestedPath)
		return Decision{
			Outcome:  Anonymous,
			Redirect: p.LoginPath + "?next=" + url.QueryEscape(returnTo),
			ReturnTo: returnTo,
		}
	}

	if rule.allows(id.Role) {
		return Decision{Outcome: Authorized}
	}

	if rule.AllowEmergency && containsRole(p.EmergencyRoles, id.Role) {
		return Decision{
			Outcome: EmergencyAuthorized,
			Notice: &models.Notice{
				Title:       "Emergency access",
				Description: p.OverrideMessage,
				Variant:     models.NoticeWarning,
			},
		}
	}

	return Decision{Outcome: Denied, Redirect: p.UnauthorizedPath}
}

// Notifier publishes user-facing notices.
type Notifier interface {
	Publish(n models.Notice) models.Notice
}

// Auditor durably records emergency passes.
type Auditor interface {
	RecordEmergencyAccess(ctx context.Context, who models.Identity, path, reason string) (models.AuditEntry, error)
}

// Gate evaluates a Policy and carries out the emergency side effects.
type Gate struct {
	policy  Policy
	notify  Notifier
	audit   Auditor
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewGate(policy Policy, notify Notifier, audit Auditor, log *logger.Logger, m *metrics.Metrics) *Gate {
	return &Gate{policy: policy, notify: notify, audit: audit, log: log, metrics: m}
}

func (g *Gate) Policy() Policy { return g.policy }

// Check evaluates the navigation. An emergency pass publishes exactly one
// notice and writes one audit entry; other outcomes have no side effects
// beyond metrics.
func (g *Gate) Check(ctx context.Context, snap session.Snapshot, rule Rule, requestedPath string) Decision {
	d := g.policy.Evaluate(snap, rule, requestedPath)
	g.metrics.GateDecision(d.Outcome.String())

	switch d.Outcome {
	case EmergencyAuthorized:
		id, _ := snap.Identity()
		published := g.notify.Publish(*d.Notice)
		d.Notice = &published
		if _, err := g.audit.RecordEmergencyAccess(ctx, id, requestedPath, d.Notice.Description); err != nil {
			g.log.WithComponent("gate").WithError(err).Error("Could not persist emergency access audit entry")
		}
	case Denied:
		id, _ := snap.Identity()
		g.log.WithComponent("gate").WithField("user_id", id.ID).WithField("path", requestedPath).Info("Access denied")
	}
	return d
}

// SafeReturnPath keeps only local absolute paths so a post-login redirect
// cannot leave the portal. Anything else becomes "/dashboard".
func SafeReturnPath(p string) string {
	const fallback = "/dashboard"
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return fallback
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return p
}

func containsRole(roles []models.Role, r models.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
