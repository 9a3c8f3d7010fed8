package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edumanage/internal/app/models"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Create inserts the user and sets its ID and CreatedAt.
	// A taken username yields apperrors.ErrDuplicateUsername.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// ListRecent returns at most limit users, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.User, error)
	CountByRole(ctx context.Context) (map[models.RoleType]int64, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// ICourseRepository defines course catalog persistence
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	// Delete reports false when no course had the given id.
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// IEnrollmentRepository defines enrollment ledger persistence
type IEnrollmentRepository interface {
	// Create inserts a Pending enrollment. The (student, course) pair is unique;
	// a second attempt yields apperrors.ErrAlreadyEnrolled and leaves the first row untouched.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	List(ctx context.Context) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Enrollment, error)
	// UpdateStatus locks the row, sets the status and returns the updated enrollment.
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error)
	CountByStatus(ctx context.Context) (map[models.EnrollmentStatus]int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users       IUserRepository
	Courses     ICourseRepository
	Enrollments IEnrollmentRepository
}

// NewRepositories initializes all PostgreSQL backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Courses:     NewCourseRepository(db),
		Enrollments: NewEnrollmentRepository(db),
	}
}
