package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/db"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/dberrors"
	"github.com/yigit/edumanage/internal/pkg/logger"
)

const (
	constraintEnrollmentPair    = "enrollments_student_course_key"
	constraintEnrollmentCourse  = "enrollments_course_id_fkey"
	constraintEnrollmentStudent = "enrollments_student_id_fkey"
)

var enrollmentColumns = []string{"id", "course_id", "student_id", "status", "created_at", "updated_at"}

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	var status string
	if err := row.Scan(&e.ID, &e.CourseID, &e.StudentID, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = models.EnrollmentStatus(status)
	return e, nil
}

// Create checks for an existing pair and inserts inside one transaction.
// The unique constraint settles races between concurrent callers.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.Status == "" {
		enrollment.Status = models.StatusPending
	}

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		existsSQL, existsArgs, err := r.sb.Select("1").
			From("enrollments").
			Where(squirrel.Eq{"student_id": enrollment.StudentID, "course_id": enrollment.CourseID}).
			Prefix("SELECT EXISTS (").Suffix(")").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build enrollment exists query: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, existsSQL, existsArgs...).Scan(&exists); err != nil {
			return fmt.Errorf("error checking enrollment existence: %w", err)
		}
		if exists {
			return apperrors.ErrAlreadyEnrolled
		}

		insertSQL, insertArgs, err := r.sb.Insert("enrollments").
			Columns("course_id", "student_id", "status").
			Values(enrollment.CourseID, enrollment.StudentID, string(enrollment.Status)).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create enrollment query: %w", err)
		}

		err = tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
		switch {
		case err == nil:
			return nil
		case dberrors.IsDuplicateConstraintError(err, constraintEnrollmentPair):
			return apperrors.ErrAlreadyEnrolled
		case dberrors.IsForeignKeyViolation(err, constraintEnrollmentCourse):
			return apperrors.ErrCourseNotFound
		case dberrors.IsForeignKeyViolation(err, constraintEnrollmentStudent):
			return apperrors.ErrUserNotFound
		default:
			logger.Error().Err(err).
				Int64("studentID", enrollment.StudentID).
				Int64("courseID", enrollment.CourseID).
				Msg("Error executing create enrollment query")
			return fmt.Errorf("error creating enrollment: %w", err)
		}
	})
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns...).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e, err := scanEnrollment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}
	return e, nil
}

// List returns all enrollments ordered by id
func (r *EnrollmentRepository) List(ctx context.Context) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectAll().OrderBy("id ASC"))
}

// ListByStudent returns the enrollments belonging to one student
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectAll().Where(squirrel.Eq{"student_id": studentID}).OrderBy("id ASC"))
}

// ListByStatus returns enrollments in the given status
func (r *EnrollmentRepository) ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectAll().Where(squirrel.Eq{"status": string(status)}).OrderBy("id ASC"))
}

// ListRecent returns at most limit enrollments, newest first
func (r *EnrollmentRepository) ListRecent(ctx context.Context, limit int) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectAll().OrderBy("id DESC").Limit(uint64(limit)))
}

func (r *EnrollmentRepository) selectAll() squirrel.SelectBuilder {
	return r.sb.Select(enrollmentColumns...).From("enrollments")
}

func (r *EnrollmentRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Enrollment, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []*models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, nil
}

// UpdateStatus reads the row FOR UPDATE and writes the new status in the same transaction.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	var updated *models.Enrollment

	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		lockSQL, lockArgs, err := r.selectAll().
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock enrollment query: %w", err)
		}

		current, err := scanEnrollment(tx.QueryRow(ctx, lockSQL, lockArgs...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrEnrollmentNotFound
			}
			return fmt.Errorf("error locking enrollment: %w", err)
		}

		updateSQL, updateArgs, err := r.sb.Update("enrollments").
			Set("status", string(status)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update enrollment query: %w", err)
		}

		if err := tx.QueryRow(ctx, updateSQL, updateArgs...).Scan(&current.UpdatedAt); err != nil {
			return fmt.Errorf("error updating enrollment status: %w", err)
		}

		current.Status = status
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CountByStatus returns enrollment counts per status, zero-filled.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context) (map[models.EnrollmentStatus]int64, error) {
	sql, args, err := r.sb.Select("status", "COUNT(*)").
		From("enrollments").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting enrollments: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EnrollmentStatus]int64, len(models.EnrollmentStatuses))
	for _, s := range models.EnrollmentStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning enrollment count: %w", err)
		}
		counts[models.EnrollmentStatus(status)] = n
	}
	return counts, rows.Err()
}
