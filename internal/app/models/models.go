package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "Student"
	RoleInstructor RoleType = "Instructor"
)

// IsValid reports whether r is one of the two known roles.
func (r RoleType) IsValid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// ParseRole matches s case-sensitively against the known roles.
func ParseRole(s string) (RoleType, bool) {
	r := RoleType(s)
	return r, r.IsValid()
}

// EnrollmentStatus is the approval state of an enrollment
type EnrollmentStatus string

const (
	StatusPending  EnrollmentStatus = "Pending"
	StatusApproved EnrollmentStatus = "Approved"
	StatusRejected EnrollmentStatus = "Rejected"
)

// EnrollmentStatuses lists every status in display order.
var EnrollmentStatuses = []EnrollmentStatus{StatusPending, StatusApproved, StatusRejected}

// IsValid reports whether s is a known status.
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseEnrollmentStatus matches s case-sensitively; "approved" is rejected.
func ParseEnrollmentStatus(s string) (EnrollmentStatus, bool) {
	st := EnrollmentStatus(s)
	return st, st.IsValid()
}
