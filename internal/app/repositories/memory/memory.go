// Package memory provides process-local implementations of the repository
// interfaces. They enforce the same uniqueness and reference rules as the
// PostgreSQL schema and are selected with database.driver=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
)

// store is shared by the three repositories so enrollments can check
// user and course references and course deletion can cascade.
type store struct {
	mu sync.RWMutex

	users      map[int64]*models.User
	courses    map[int64]*models.Course
	enrolments map[int64]*models.Enrollment

	nextUserID       int64
	nextCourseID     int64
	nextEnrollmentID int64

	now func() time.Time
}

// NewRepositories returns empty in-memory repositories sharing one store.
func NewRepositories() *repositories.Repositories {
	s := &store{
		users:      map[int64]*models.User{},
		courses:    map[int64]*models.Course{},
		enrolments: map[int64]*models.Enrollment{},
		now:        time.Now,
	}
	return &repositories.Repositories{
		Users:       &UserRepository{s: s},
		Courses:     &CourseRepository{s: s},
		Enrollments: &EnrollmentRepository{s: s},
	}
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func clampRecent[T any](items []T, limit int) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}

// UserRepository is the in-memory IUserRepository.
type UserRepository struct{ s *store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return apperrors.ErrDuplicateUsername
		}
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.all(), nil
}

func (r *UserRepository) ListRecent(_ context.Context, limit int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return clampRecent(r.all(), limit), nil
}

func (r *UserRepository) all() []*models.User {
	users := make([]*models.User, 0, len(r.s.users))
	for _, id := range sortedIDs(r.s.users) {
		cp := *r.s.users[id]
		users = append(users, &cp)
	}
	return users
}

func (r *UserRepository) CountByRole(_ context.Context) (map[models.RoleType]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[models.RoleType]int64{models.RoleStudent: 0, models.RoleInstructor: 0}
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// CourseRepository is the in-memory ICourseRepository.
type CourseRepository struct{ s *store }

func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCourseID++
	course.ID = r.s.nextCourseID
	course.CreatedAt = r.s.now()
	stored := *course
	r.s.courses[course.ID] = &stored
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CourseRepository) List(_ context.Context) ([]*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	courses := make([]*models.Course, 0, len(r.s.courses))
	for _, id := range sortedIDs(r.s.courses) {
		cp := *r.s.courses[id]
		courses = append(courses, &cp)
	}
	return courses, nil
}

func (r *CourseRepository) Update(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	c.Title = course.Title
	c.Description = course.Description
	course.CreatedAt = c.CreatedAt
	return nil
}

func (r *CourseRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return false, nil
	}
	delete(r.s.courses, id)
	for eid, e := range r.s.enrolments {
		if e.CourseID == id {
			delete(r.s.enrolments, eid)
		}
	}
	return true, nil
}

func (r *CourseRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.courses)), nil
}

// EnrollmentRepository is the in-memory IEnrollmentRepository.
type EnrollmentRepository struct{ s *store }

func (r *EnrollmentRepository) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.enrolments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return apperrors.ErrAlreadyEnrolled
		}
	}
	if _, ok := r.s.courses[enrollment.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if _, ok := r.s.users[enrollment.StudentID]; !ok {
		return apperrors.ErrUserNotFound
	}

	if enrollment.Status == "" {
		enrollment.Status = models.StatusPending
	}
	r.s.nextEnrollmentID++
	enrollment.ID = r.s.nextEnrollmentID
	enrollment.CreatedAt = r.s.now()
	enrollment.UpdatedAt = enrollment.CreatedAt
	stored := *enrollment
	r.s.enrolments[enrollment.ID] = &stored
	return nil
}

func (r *EnrollmentRepository) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.enrolments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *EnrollmentRepository) filter(keep func(*models.Enrollment) bool) []*models.Enrollment {
	out := []*models.Enrollment{}
	for _, id := range sortedIDs(r.s.enrolments) {
		e := r.s.enrolments[id]
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

func (r *EnrollmentRepository) List(_ context.Context) ([]*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(*models.Enrollment) bool { return true }), nil
}

func (r *EnrollmentRepository) ListByStudent(_ context.Context, studentID int64) ([]*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(e *models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r *EnrollmentRepository) ListByStatus(_ context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(e *models.Enrollment) bool { return e.Status == status }), nil
}

func (r *EnrollmentRepository) ListRecent(_ context.Context, limit int) ([]*models.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return clampRecent(r.filter(func(*models.Enrollment) bool { return true }), limit), nil
}

func (r *EnrollmentRepository) UpdateStatus(_ context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.enrolments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	e.Status = status
	e.UpdatedAt = r.s.now()
	cp := *e
	return &cp, nil
}

func (r *EnrollmentRepository) CountByStatus(_ context.Context) (map[models.EnrollmentStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.EnrollmentStatus]int64, len(models.EnrollmentStatuses))
	for _, s := range models.EnrollmentStatuses {
		counts[s] = 0
	}
	for _, e := range r.s.enrolments {
		counts[e.Status]++
	}
	return counts, nil
}
