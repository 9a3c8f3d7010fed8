package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/repositories"
)

// CourseService defines the interface for course catalog operations
type CourseService interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	CreateCourse(ctx context.Context, req *dto.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error)
	// DeleteCourse reports false when the course did not exist.
	DeleteCourse(ctx context.Context, id int64) (bool, error)
}

type courseServiceImpl struct {
	courseRepo repositories.ICourseRepository
	logger     zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo repositories.ICourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		logger:     logger,
	}
}

// courseFromRequest validates the request and normalizes whitespace.
// An all-blank description is stored as NULL.
func courseFromRequest(req *dto.CourseRequest) (*models.Course, error) {
	if err := requireNonBlank("title", req.Title); err != nil {
		return nil, err
	}

	course := &models.Course{Title: strings.TrimSpace(req.Title)}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			course.Description = &d
		}
	}
	return course, nil
}

// ListCourses returns the full catalog
func (s *courseServiceImpl) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.List(ctx)
}

// GetCourseByID retrieves a course
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if err := requirePositiveID("courseId", id); err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, id)
}

// CreateCourse adds a course to the catalog
func (s *courseServiceImpl) CreateCourse(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	course, err := courseFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Str("title", course.Title).Msg("Course created")
	return course, nil
}

// UpdateCourse replaces title and description
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	if err := requirePositiveID("courseId", id); err != nil {
		return nil, err
	}

	course, err := courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	course.ID = id

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", id).Msg("Course updated")
	return course, nil
}

// DeleteCourse removes a course and, through the store, its enrollments
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	deleted, err := s.courseRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().Int64("courseID", id).Msg("Course deleted")
	}
	return deleted, nil
}
