// Package authz enforces the role permission policy with casbin.
//
// Subjects are "role:<name>", the domain is the organization id and the
// object/action pair names a permission such as payroll:approve. Roles
// inherit from the role they extend, so an admin holds every hr grant.
package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed model.conf
var modelText string

//go:embed default_policy.yaml
var defaultPolicy []byte

// Mode controls whether denials are enforced
type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

// ParseMode validates a mode name. Empty means enforce.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeEnforce:
		return ModeEnforce, nil
	case ModeShadow:
		return ModeShadow, nil
	case ModeDisabled:
		return ModeDisabled, nil
	}
	return "", fmt.Errorf("authz: invalid mode %q (expected enforce|shadow|disabled)", raw)
}

// DomainAny matches every organization in a policy line
const DomainAny = "*"

// Policy is the YAML policy document
type Policy struct {
	Roles map[string]RoleGrant `yaml:"roles"`
	// Tenants grants extra permissions to roles of one organization
	Tenants map[string]map[string][]string `yaml:"tenants"`
}

// RoleGrant lists the permissions of one role
type RoleGrant struct {
	Extends     string   `yaml:"extends"`
	Permissions []string `yaml:"permissions"`
}

// ParsePolicy decodes a YAML policy
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("authz: parse policy: %w", err)
	}
	if len(p.Roles) == 0 {
		return nil, errors.New("authz: policy defines no roles")
	}
	for name, grant := range p.Roles {
		if grant.Extends != "" {
			if _, ok := p.Roles[grant.Extends]; !ok {
				return nil, fmt.Errorf("authz: role %q extends unknown role %q", name, grant.Extends)
			}
		}
	}
	return &p, nil
}

// LoadPolicy reads the policy file, or the embedded default when path is empty
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return ParsePolicy(defaultPolicy)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authz: read policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

// Authorizer answers permission checks for a set of roles
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	mode     Mode
	logger   *zap.Logger
}

// NewAuthorizer builds the enforcer from a policy
func NewAuthorizer(policy *Policy, mode Mode, logger *zap.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}

	var rules, groupings [][]string
	for role, grant := range policy.Roles {
		sub := SubjectFromRole(role)
		if grant.Extends != "" {
			groupings = append(groupings, []string{sub, SubjectFromRole(grant.Extends)})
		}
		for _, perm := range grant.Permissions {
			obj, act, err := splitPermission(perm)
			if err != nil {
				return nil, fmt.Errorf("authz: role %q: %w", role, err)
			}
			rules = append(rules, []string{sub, DomainAny, obj, act})
		}
	}
	for domain, roles := range policy.Tenants {
		for role, perms := range roles {
			for _, perm := range perms {
				obj, act, err := splitPermission(perm)
				if err != nil {
					return nil, fmt.Errorf("authz: tenant %s role %q: %w", domain, role, err)
				}
				rules = append(rules, []string{SubjectFromRole(role), DomainFromTenantID(domain), obj, act})
			}
		}
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("authz: add policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
			return nil, fmt.Errorf("authz: add role inheritance: %w", err)
		}
	}
	return &Authorizer{enforcer: enforcer, mode: mode, logger: logger}, nil
}

// SubjectFromRole returns the casbin subject of a role
func SubjectFromRole(role string) string {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = "anonymous"
	}
	return "role:" + role
}

// DomainFromTenantID normalizes an organization id for policy matching
func DomainFromTenantID(tenantID string) string {
	return strings.ToLower(strings.TrimSpace(tenantID))
}

// Authorize reports whether any of the roles grants object:action in the
// organization. In shadow mode denials are logged and allowed.
func (a *Authorizer) Authorize(roles []string, tenantID, object, action string) (bool, error) {
	if a.mode == ModeDisabled {
		return true, nil
	}
	domain := DomainFromTenantID(tenantID)
	allowed := false
	for _, role := range roles {
		ok, err := a.enforcer.Enforce(SubjectFromRole(role), domain, object, action)
		if err != nil {
			return false, fmt.Errorf("authz: enforce: %w", err)
		}
		if ok {
			allowed = true
			break
		}
	}
	if !allowed && a.mode == ModeShadow {
		a.logger.Warn("Authorization denied in shadow mode",
			zap.Strings("roles", roles),
			zap.String("tenant_id", tenantID),
			zap.String("object", object),
			zap.String("action", action))
		return true, nil
	}
	return allowed, nil
}

// Mode returns the enforcement mode
func (a *Authorizer) Mode() Mode {
	return a.mode
}

func splitPermission(perm string) (string, string, error) {
	obj, act, ok := strings.Cut(strings.TrimSpace(perm), ":")
	if !ok || obj == "" || act == "" {
		return "", "", fmt.Errorf("invalid permission %q, expected object:action", perm)
	}
	return obj, act, nil
}
