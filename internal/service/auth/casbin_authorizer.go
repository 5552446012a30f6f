package auth

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/google/uuid"

	"vantage/internal/domain"
	"vantage/internal/domain/repositories"
	"vantage/internal/metrics"
)

//go:embed authz_model.conf
var modelText string

//go:embed authz_policy.csv
var defaultPolicy string

// Mode controls whether denials are enforced
type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow" // Evaluate and log, never deny
	ModeDisabled Mode = "disabled"
)

// Casbin request values
const (
	ObjectTree  = "tree"
	ActionRead  = "read"
	ActionWrite = "write"
)

// Membership roles stored in company_members.role
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// IsKnownRole reports whether role is a membership role the default policy grants
func IsKnownRole(role string) bool {
	switch role {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// ParseMode validates an AUTHZ_MODE value. Empty means enforce.
func ParseMode(raw string) (Mode, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ModeEnforce, nil
	}
	switch Mode(raw) {
	case ModeEnforce, ModeShadow, ModeDisabled:
		return Mode(raw), nil
	default:
		return "", fmt.Errorf("invalid authz mode %q (expected enforce|shadow|disabled)", raw)
	}
}

// SubjectFromRoleSlug maps a membership role to a casbin subject
func SubjectFromRoleSlug(roleSlug string) string {
	roleSlug = strings.TrimSpace(strings.ToLower(roleSlug))
	if roleSlug == "" {
		roleSlug = "anonymous"
	}
	return "role:" + roleSlug
}

// DomainFromCompanyID maps a company to a casbin domain
func DomainFromCompanyID(companyID int64) string {
	return "company:" + strconv.FormatInt(companyID, 10)
}

// CasbinAuthorizer implements CompanyAuthorizer with role-based policies.
// A user's role in a company comes from the membership table; casbin decides
// what that role may do with the company tree.
type CasbinAuthorizer struct {
	enforcer *casbin.Enforcer
	members  repositories.MembershipRepository
	mode     Mode
	logger   *slog.Logger
}

// NewCasbinAuthorizer builds the enforcer from the embedded model. Policies
// are read from policyPath when set, from the embedded defaults otherwise.
func NewCasbinAuthorizer(
	members repositories.MembershipRepository,
	policyPath string,
	mode Mode,
	logger *slog.Logger,
) (*CasbinAuthorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}

	var adapter persist.Adapter = stringadapter.NewAdapter(defaultPolicy)
	if policyPath != "" {
		adapter = fileadapter.NewAdapter(policyPath)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	if mode == ModeDisabled {
		logger.Warn("authorization disabled, every member check passes")
	}

	return &CasbinAuthorizer{
		enforcer: enforcer,
		members:  members,
		mode:     mode,
		logger:   logger,
	}, nil
}

// CanViewCompany checks the user's role allows reading the tree
func (a *CasbinAuthorizer) CanViewCompany(ctx context.Context, userID uuid.UUID, companyID int64) error {
	return a.authorize(ctx, userID, companyID, ActionRead)
}

// CanEditCompany checks the user's role allows reordering the tree
func (a *CasbinAuthorizer) CanEditCompany(ctx context.Context, userID uuid.UUID, companyID int64) error {
	return a.authorize(ctx, userID, companyID, ActionWrite)
}

func (a *CasbinAuthorizer) authorize(ctx context.Context, userID uuid.UUID, companyID int64, action string) error {
	if a.mode == ModeDisabled {
		return nil
	}

	// Non-members evaluate as anonymous so unknown companies look the same as
	// foreign ones
	role, err := a.members.GetRole(ctx, userID, companyID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("resolve membership: %w", err)
	}

	subject := SubjectFromRoleSlug(role)
	allowed, err := a.enforcer.Enforce(subject, DomainFromCompanyID(companyID), ObjectTree, action)
	if err != nil {
		return fmt.Errorf("enforce %s: %w", action, err)
	}
	metrics.RecordAuthzDecision(action, allowed)

	if allowed {
		return nil
	}

	if a.mode == ModeShadow {
		a.logger.Warn("authz shadow denial",
			"user_id", userID,
			"company_id", companyID,
			"subject", subject,
			"action", action,
		)
		return nil
	}

	a.logger.Debug("authz denied",
		"user_id", userID,
		"company_id", companyID,
		"subject", subject,
		"action", action,
	)
	return fmt.Errorf("access denied to company %d: %w", companyID, domain.ErrForbidden)
}
