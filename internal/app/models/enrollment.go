package models

import "time"

// Enrollment links a student to a course. At most one exists per (StudentID, CourseID).
type Enrollment struct {
	ID        int64            `json:"id" db:"id"`
	CourseID  int64            `json:"courseId" db:"course_id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	Status    EnrollmentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`
}

// EnrollmentEvent names a change pushed to live subscribers
type EnrollmentEvent string

const (
	EventEnrollmentCreated       EnrollmentEvent = "enrollment.created"
	EventEnrollmentStatusChanged EnrollmentEvent = "enrollment.status_changed"
)
