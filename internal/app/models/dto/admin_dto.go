package dto

// DashboardStats aggregates counts across the three stores
type DashboardStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalStudents       int64 `json:"totalStudents"`
	TotalInstructors    int64 `json:"totalInstructors"`
	TotalCourses        int64 `json:"totalCourses"`
	TotalEnrollments    int64 `json:"totalEnrollments"`
	PendingEnrollments  int64 `json:"pendingEnrollments"`
	ApprovedEnrollments int64 `json:"approvedEnrollments"`
	RejectedEnrollments int64 `json:"rejectedEnrollments"`
}

// UserReport summarizes registered users
type UserReport struct {
	TotalUsers       int64          `json:"totalUsers"`
	TotalStudents    int64          `json:"totalStudents"`
	TotalInstructors int64          `json:"totalInstructors"`
	RecentUsers      []UserResponse `json:"recentUsers"`
}

// EnrollmentReport summarizes enrollment activity
type EnrollmentReport struct {
	TotalEnrollments    int64                `json:"totalEnrollments"`
	PendingEnrollments  int64                `json:"pendingEnrollments"`
	ApprovedEnrollments int64                `json:"approvedEnrollments"`
	RejectedEnrollments int64                `json:"rejectedEnrollments"`
	RecentEnrollments   []EnrollmentResponse `json:"recentEnrollments"`
}
