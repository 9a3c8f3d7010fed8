// Package auth decides what an authenticated caller may do. The caller's role
// is the only capability input; no per-request database lookup is made.
package auth

import (
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	jwtauth "github.com/yigit/edumanage/internal/pkg/auth"
)

// Authorization errors. Both unwrap to apperrors.ErrPermissionDenied.
var (
	ErrNotInstructor   = apperrors.NewForbiddenError("only instructors can perform this action")
	ErrNotOwnStudentID = apperrors.NewForbiddenError("students may only act on their own enrollments")
)

// Principal is the verified identity attached to a request
type Principal struct {
	UserID   int64
	Username string
	FullName string
	Role     models.RoleType
}

// IsInstructor reports whether the principal holds the Instructor role
func (p *Principal) IsInstructor() bool {
	return p != nil && p.Role == models.RoleInstructor
}

// PrincipalFromClaims builds a Principal from validated token claims
func PrincipalFromClaims(claims *jwtauth.Claims) *Principal {
	return &Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		FullName: claims.FullName,
		Role:     models.RoleType(claims.Role),
	}
}

// Requirement describes what a route group demands of its caller.
// An empty Role means any authenticated user.
type Requirement struct {
	Role models.RoleType
}

var (
	Authenticated  = Requirement{}
	InstructorOnly = Requirement{Role: models.RoleInstructor}
)

// Authorize is the single gate evaluated for every protected route.
// A missing principal is 401; a role mismatch is 403.
func Authorize(p *Principal, req Requirement) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if req.Role != "" && p.Role != req.Role {
		if req.Role == models.RoleInstructor {
			return ErrNotInstructor
		}
		return apperrors.NewForbiddenError("role " + string(req.Role) + " required")
	}
	return nil
}

// CanAccessStudentRecords allows instructors and the student themselves.
func CanAccessStudentRecords(p *Principal, studentID int64) error {
	if err := Authorize(p, Authenticated); err != nil {
		return err
	}
	if p.IsInstructor() || p.UserID == studentID {
		return nil
	}
	return ErrNotOwnStudentID
}

// ResolveEnrollee picks the student an enrollment request is for. An omitted
// id means the caller; a Student naming anyone else is refused.
func ResolveEnrollee(p *Principal, requested *int64) (int64, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return 0, err
	}
	if requested == nil {
		return p.UserID, nil
	}
	if err := CanAccessStudentRecords(p, *requested); err != nil {
		return 0, err
	}
	return *requested, nil
}
