package dto

import "github.com/yigit/edumanage/internal/app/models"

// EnrollmentRequest asks to enroll a student in a course. StudentID defaults
// to the caller when omitted.
type EnrollmentRequest struct {
	StudentID *int64 `json:"studentId,omitempty" binding:"omitempty,gt=0" example:"3"`
	CourseID  int64  `json:"courseId" binding:"required,gt=0" example:"1"`
}

// EnrollmentResponse represents an enrollment in API responses
type EnrollmentResponse struct {
	EnrollmentID int64  `json:"enrollmentId" example:"10"`
	CourseID     int64  `json:"courseId" example:"1"`
	StudentID    int64  `json:"studentId" example:"3"`
	Status       string `json:"status" example:"Pending" enums:"Pending,Approved,Rejected"`
}

// NewEnrollmentResponse maps an enrollment model
func NewEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID: e.ID,
		CourseID:     e.CourseID,
		StudentID:    e.StudentID,
		Status:       string(e.Status),
	}
}

// NewEnrollmentResponses maps a slice of enrollments
func NewEnrollmentResponses(enrollments []*models.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, NewEnrollmentResponse(e))
	}
	return out
}
