package dto

import "github.com/yigit/edumanage/internal/app/models"

// CourseRequest carries course create and update data
type CourseRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=200" example:"Introduction to Go"`
	Description *string `json:"description,omitempty" example:"Types, interfaces and goroutines"`
}

// CourseResponse represents a course in API responses
type CourseResponse struct {
	CourseID    int64   `json:"courseId" example:"1"`
	Title       string  `json:"title" example:"Introduction to Go"`
	Description *string `json:"description,omitempty"`
}

// NewCourseResponse maps a course model
func NewCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{
		CourseID:    c.ID,
		Title:       c.Title,
		Description: c.Description,
	}
}

// NewCourseResponses maps a slice of courses
func NewCourseResponses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}
