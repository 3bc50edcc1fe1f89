package access

import "github.com/harentsoaR/mediflow-portal/internal/models"

// DefaultRules are the portal's protected screens.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/dashboard"},
		{Path: "/health-records"},
		{Path: "/records"},
		{Path: "/appointments"},
		{Path: "/documents"},
		{Path: "/settings"},
		{Path: "/notifications"},
		{Path: "/my-patients", RequiredRoles: []models.Role{models.RoleDoctor}},
		{Path: "/emergency-access", RequiredRoles: []models.Role{models.RoleHospital}, AllowEmergency: true},
		{Path: "/audit", RequiredRoles: []models.Role{models.RoleHospital}},
	}
}

// RuleFor returns the rule registered for path.
func RuleFor(rules []Rule, path string) (Rule, bool) {
	for _, r := range rules {
		if r.Path == path {
			return r, true
		}
	}
	return Rule{}, false
}
