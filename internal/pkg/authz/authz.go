// Package authz maps roles to capabilities and answers "may this identity
// touch this row" questions. Routes declare the capability they need; services
// ask for ownership-or-capability on single rows.
package authz

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden")

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole accepts exactly the three known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleModerator:
		return RoleModerator, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Permission is "resource:action". "*" may be used for either half.
type Permission string

const (
	ApplicationsReview Permission = "applications:review"
	ApplicationsList   Permission = "applications:list"
	CasesAny           Permission = "cases:any"
	ContractsAny       Permission = "contracts:any"
	DocumentsAny       Permission = "documents:any"
	UsersList          Permission = "users:list"
	UsersRole          Permission = "users:role"
	NotificationsGen   Permission = "notifications:generate"
	LogsView           Permission = "logs:view"
	DashboardView      Permission = "dashboard:view"
	StrategyPackFree   Permission = "strategy_pack:free"

	superPermission Permission = "*:*"
)

func (p Permission) split() (string, string) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Matches reports whether a granted permission covers the requested one.
func (p Permission) Matches(requested Permission) bool {
	if p == superPermission || p == requested {
		return true
	}
	res, act := p.split()
	reqRes, _ := requested.split()
	return res != "" && res == reqRes && act == "*"
}

var rolePermissions = map[Role][]Permission{
	RoleUser:      {},
	RoleModerator: {"applications:*", DashboardView},
	RoleAdmin:     {superPermission},
}

// Can reports whether role holds permission p.
func Can(role Role, p Permission) bool {
	for _, granted := range rolePermissions[role] {
		if granted.Matches(p) {
			return true
		}
	}
	return false
}

// Identity is the resolved caller attached to each authenticated request.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	SessionID string    `json:"-"`
}

func (i *Identity) Can(p Permission) bool {
	return i != nil && Can(i.Role, p)
}

// CanAccess passes for the row owner or for anyone holding p.
func (i *Identity) CanAccess(ownerID uuid.UUID, p Permission) bool {
	if i == nil {
		return false
	}
	return i.ID == ownerID || i.Can(p)
}

// Authorize is CanAccess returning ErrForbidden.
func Authorize(i *Identity, ownerID uuid.UUID, p Permission) error {
	if !i.CanAccess(ownerID, p) {
		return ErrForbidden
	}
	return nil
}
