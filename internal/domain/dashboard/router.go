// Package dashboard selects which dashboard a resolved principal sees.
package dashboard

import (
	"errors"
	"fmt"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
)

// View identifies a dashboard variant.
type View string

const (
	AdminDashboard   View = "admin_dashboard"
	TeacherDashboard View = "teacher_dashboard"
	ParentDashboard  View = "parent_dashboard"
	StudentDashboard View = "student_dashboard"
)

// ErrUnsupportedRole matches any UnsupportedRoleError via errors.Is.
var ErrUnsupportedRole = errors.New("unsupported role")

// UnsupportedRoleError reports a role with no dashboard. It signals a
// deployment or data fault, never a reason to fall back to another view.
type UnsupportedRoleError struct {
	Role domainauth.Role
}

func (e *UnsupportedRoleError) Error() string {
	return fmt.Sprintf("no dashboard for role %q", string(e.Role))
}

func (e *UnsupportedRoleError) Is(target error) bool { return target == ErrUnsupportedRole }

// Route maps a role to its dashboard. Every role has an explicit case.
func Route(role domainauth.Role) (View, error) {
	switch role {
	case domainauth.RoleAdmin:
		return AdminDashboard, nil
	case domainauth.RoleTeacher:
		return TeacherDashboard, nil
	case domainauth.RoleParent:
		return ParentDashboard, nil
	case domainauth.RoleStudent:
		return StudentDashboard, nil
	case domainauth.RoleOrganization:
		// Valid role with no dashboard yet; reported as unsupported.
		return "", &UnsupportedRoleError{Role: role}
	default:
		return "", &UnsupportedRoleError{Role: role}
	}
}
