package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/repositories"
	"golang.org/x/sync/errgroup"
)

// Report sizes for the "recent" lists, newest first.
const (
	RecentUsersLimit       = 5
	RecentEnrollmentsLimit = 10
)

// AdminService computes read-only aggregates for the admin area
type AdminService interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error)
	GetUserReport(ctx context.Context) (*dto.UserReport, error)
	GetEnrollmentReport(ctx context.Context) (*dto.EnrollmentReport, error)
}

type adminServiceImpl struct {
	userRepo       repositories.IUserRepository
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	logger         zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(repos *repositories.Repositories, logger zerolog.Logger) AdminService {
	return &adminServiceImpl{
		userRepo:       repos.Users,
		courseRepo:     repos.Courses,
		enrollmentRepo: repos.Enrollments,
		logger:         logger,
	}
}

func sumCounts[K comparable](counts map[K]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}

// GetDashboardStats queries the three stores concurrently
func (s *adminServiceImpl) GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	var (
		roleCounts   map[models.RoleType]int64
		statusCounts map[models.EnrollmentStatus]int64
		courseCount  int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roleCounts, err = s.userRepo.CountByRole(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		courseCount, err = s.courseRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		statusCounts, err = s.enrollmentRepo.CountByStatus(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute dashboard stats")
		return nil, fmt.Errorf("error computing dashboard stats: %w", err)
	}

	return &dto.DashboardStats{
		TotalUsers:          sumCounts(roleCounts),
		TotalStudents:       roleCounts[models.RoleStudent],
		TotalInstructors:    roleCounts[models.RoleInstructor],
		TotalCourses:        courseCount,
		TotalEnrollments:    sumCounts(statusCounts),
		PendingEnrollments:  statusCounts[models.StatusPending],
		ApprovedEnrollments: statusCounts[models.StatusApproved],
		RejectedEnrollments: statusCounts[models.StatusRejected],
	}, nil
}

// GetUserReport returns user counts and the most recent registrations
func (s *adminServiceImpl) GetUserReport(ctx context.Context) (*dto.UserReport, error) {
	var (
		roleCounts map[models.RoleType]int64
		recent     []*models.User
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roleCounts, err = s.userRepo.CountByRole(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.userRepo.ListRecent(ctx, RecentUsersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error building user report: %w", err)
	}

	return &dto.UserReport{
		TotalUsers:       sumCounts(roleCounts),
		TotalStudents:    roleCounts[models.RoleStudent],
		TotalInstructors: roleCounts[models.RoleInstructor],
		RecentUsers:      dto.NewUserResponses(recent),
	}, nil
}

// GetEnrollmentReport returns enrollment counts and the most recent enrollments
func (s *adminServiceImpl) GetEnrollmentReport(ctx context.Context) (*dto.EnrollmentReport, error) {
	var (
		statusCounts map[models.EnrollmentStatus]int64
		recent       []*models.Enrollment
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statusCounts, err = s.enrollmentRepo.CountByStatus(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.enrollmentRepo.ListRecent(ctx, RecentEnrollmentsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error building enrollment report: %w", err)
	}

	return &dto.EnrollmentReport{
		TotalEnrollments:    sumCounts(statusCounts),
		PendingEnrollments:  statusCounts[models.StatusPending],
		ApprovedEnrollments: statusCounts[models.StatusApproved],
		RejectedEnrollments: statusCounts[models.StatusRejected],
		RecentEnrollments:   dto.NewEnrollmentResponses(recent),
	}, nil
}
