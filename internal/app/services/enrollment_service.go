package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
)

// EnrollmentService defines the enrollment ledger operations
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	ListAll(ctx context.Context) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error)
	// UpdateStatus parses status case-sensitively; any of the three states may
	// follow any other.
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Enrollment, error)
	Approve(ctx context.Context, id int64) (*models.Enrollment, error)
	Reject(ctx context.Context, id int64) (*models.Enrollment, error)
}

// EnrollmentNotifier receives ledger changes after they are committed.
// Implementations must not block.
type EnrollmentNotifier interface {
	EnrollmentChanged(kind models.EnrollmentEvent, e *models.Enrollment)
}

type nopNotifier struct{}

func (nopNotifier) EnrollmentChanged(models.EnrollmentEvent, *models.Enrollment) {}

type enrollmentServiceImpl struct {
	enrollmentRepo repositories.IEnrollmentRepository
	notifier       EnrollmentNotifier
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService. notifier may be nil.
func NewEnrollmentService(enrollmentRepo repositories.IEnrollmentRepository, notifier EnrollmentNotifier, logger zerolog.Logger) EnrollmentService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &enrollmentServiceImpl{
		enrollmentRepo: enrollmentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// Enroll creates a Pending enrollment. A repeated request for the same pair
// fails with ErrAlreadyEnrolled and leaves the existing enrollment as it was.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	if err := requirePositiveID("studentId", studentID); err != nil {
		return nil, err
	}
	if err := requirePositiveID("courseId", courseID); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.StatusPending,
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyEnrolled) {
			s.logger.Info().Int64("studentID", studentID).Int64("courseID", courseID).Msg("Duplicate enrollment rejected")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("studentID", studentID).
		Int64("courseID", courseID).
		Msg("Enrollment created")
	s.notifier.EnrollmentChanged(models.EventEnrollmentCreated, enrollment)
	return enrollment, nil
}

// ListAll returns every enrollment. Callers restrict access.
func (s *enrollmentServiceImpl) ListAll(ctx context.Context) ([]*models.Enrollment, error) {
	return s.enrollmentRepo.List(ctx)
}

// ListByStudent returns only the given student's enrollments
func (s *enrollmentServiceImpl) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	if err := requirePositiveID("studentId", studentID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// ListByStatus returns enrollments in one status
func (s *enrollmentServiceImpl) ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.enrollmentRepo.ListByStatus(ctx, status)
}

// UpdateStatus validates the status before touching the store
func (s *enrollmentServiceImpl) UpdateStatus(ctx context.Context, id int64, status string) (*models.Enrollment, error) {
	parsed, ok := models.ParseEnrollmentStatus(status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.setStatus(ctx, id, parsed)
}

// Approve marks an enrollment Approved
func (s *enrollmentServiceImpl) Approve(ctx context.Context, id int64) (*models.Enrollment, error) {
	return s.setStatus(ctx, id, models.StatusApproved)
}

// Reject marks an enrollment Rejected
func (s *enrollmentServiceImpl) Reject(ctx context.Context, id int64) (*models.Enrollment, error) {
	return s.setStatus(ctx, id, models.StatusRejected)
}

func (s *enrollmentServiceImpl) setStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	if id <= 0 {
		return nil, apperrors.ErrEnrollmentNotFound
	}

	updated, err := s.enrollmentRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("enrollmentID", id).Str("status", string(status)).Msg("Enrollment status changed")
	s.notifier.EnrollmentChanged(models.EventEnrollmentStatusChanged, updated)
	return updated, nil
}
